package handler

import (
	"errors"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"voicebank/internal/service"
)

// AcceptedObserver is notified once per committed sample with its audio size,
// used to feed the Prometheus sample counters. May be nil.
type AcceptedObserver func(size int64)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; all ingestion rules live in the service.
func RegisterRoutes(app *fiber.App, datasetDir string, svc service.SampleService, observe AcceptedObserver) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(datasetDir))
	app.Get("/healthz", LivenessProbe())

	app.Post("/upload", UploadSample(svc, observe))
	app.Get("/stats", DatasetStats(svc))
	app.Get("/samples", ListSamples(svc))
}

// HealthCheck verifies the dataset directory is present and writable, since
// the flat-file store is this service's only dependency.
func HealthCheck(datasetDir string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		probe, err := os.CreateTemp(datasetDir, ".health-*")
		if err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dataset storage unavailable")
		}
		probe.Close()
		_ = os.Remove(probe.Name())
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness check.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// UploadSample handles one contribution: multipart/form-data with an `audio`
// file plus `text`, `language`, and `environment` fields.
func UploadSample(svc service.SampleService, observe AcceptedObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("audio")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "AUDIO_REQUIRED", "audio file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "AUDIO_OPEN_ERROR", "cannot open uploaded audio")
		}
		defer f.Close()

		sample, err := svc.Submit(
			c.UserContext(),
			f,
			fh.Size,
			c.FormValue("text"),
			c.FormValue("language"),
			c.FormValue("environment"),
		)
		if err != nil {
			return writeSubmitError(c, err)
		}

		if observe != nil {
			observe(fh.Size)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"filename": sample.Filename,
			"status":   "ok",
		})
	}
}

// writeSubmitError maps service validation errors to client errors; anything
// else is a storage failure and stays opaque.
func writeSubmitError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAudioRequired):
		return writeError(c, fiber.StatusBadRequest, "AUDIO_REQUIRED", "audio file is required")
	case errors.Is(err, service.ErrEmptyAudio):
		return writeError(c, fiber.StatusBadRequest, "AUDIO_EMPTY", "audio payload is empty")
	case errors.Is(err, service.ErrAudioTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "AUDIO_TOO_LARGE", "audio exceeds the size limit")
	case errors.Is(err, service.ErrTextTooLong):
		return writeError(c, fiber.StatusBadRequest, "TEXT_TOO_LONG", "transcript exceeds the length limit")
	case errors.Is(err, service.ErrInvalidLanguage):
		return writeError(c, fiber.StatusBadRequest, "INVALID_LANGUAGE", "language must be one of Bengali, English, Mixed")
	case errors.Is(err, service.ErrInvalidEnvironment):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ENVIRONMENT", "environment must be one of Noisy, Quiet")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "failed to save the sample")
	}
}

// DatasetStats returns aggregate counts for the stats display.
func DatasetStats(svc service.SampleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Stats(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// ListSamples returns metadata rows with limit & offset.
func ListSamples(svc service.SampleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limitStr := c.Query("limit", "10")
		offsetStr := c.Query("offset", "0")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

package log

import (
	"io"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var base = logrus.New()

func init() {
	base.SetFormatter(&logrus.JSONFormatter{})
}

// MirrorToFile appends all log output to path in addition to stdout.
func MirrorToFile(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	base.SetOutput(io.MultiWriter(os.Stdout, f))
	return nil
}

func entry(c *fiber.Ctx, action string, fields map[string]any) *logrus.Entry {
	e := base.WithField("action", action)
	if c != nil {
		e = e.WithFields(logrus.Fields{
			"ip":     c.IP(),
			"method": c.Method(),
			"path":   c.Path(),
		})
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e = e.WithField("req_id", rid)
		}
	}
	for k, v := range fields {
		e = e.WithField(k, v)
	}
	return e
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, action, fields).Info(action)
}

func Warn(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, action, fields).Warn(action)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := entry(c, action, fields)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(action)
}

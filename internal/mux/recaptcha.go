package mux

import (
	"time"

	grecaptcha "github.com/ezzarghili/recaptcha-go"
	"github.com/sirupsen/logrus"
)

type recaptcha interface {
	// Verify will verify the token is valid
	Verify(token string) error
}

// skipRecaptcha is used when no secret is configured
type skipRecaptcha struct{}

func (skipRecaptcha) Verify(string) error {
	return nil
}

func newRecaptcha(logger logrus.FieldLogger, secret string) recaptcha {
	if secret == "" {
		logger.Warn("no recaptcha secret configured, room creation is not verified")
		return skipRecaptcha{}
	}

	captcha, err := grecaptcha.NewReCAPTCHA(secret, grecaptcha.V3, 10*time.Second)
	if err != nil {
		logger.WithError(err).Fatal("could not load recaptcha")
	}

	return &captcha
}

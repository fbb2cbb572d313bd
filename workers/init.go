package workers

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

func Init(logger *logrus.Logger) error {
	log = logger.WithFields(logrus.Fields{
		"component": "workers",
	}).Logger
	return nil
}

func Fini() {}

// claimant identifies this worker instance in a record's lease
func claimant(role string) string {
	return fmt.Sprintf("%s-%s", role, uuid.Must(uuid.NewV7()).String())
}

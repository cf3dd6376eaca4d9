package delivery

import (
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/forest-guardian/landwatch/internal/log"
)

func TestMain(m *testing.M) {
	log.SetLogger(zap.NewNop())
	os.Exit(m.Run())
}

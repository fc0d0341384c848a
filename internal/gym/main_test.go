package gym

import (
	"os"
	"testing"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

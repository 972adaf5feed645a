package utils

import (
	"net/http"

	"github.com/rollbar/rollbar-go"
	rollbarerrors "github.com/rollbar/rollbar-go/errors"

	"github.com/vnkhanh/pathfinder-backend/config"
)

var rollbarEnabled bool

func InitRollbar(cfg *config.Config) {
	rollbarEnabled = cfg.RollbarToken != ""
	rollbar.SetEnabled(rollbarEnabled)
	if !rollbarEnabled {
		return
	}
	rollbar.SetToken(cfg.RollbarToken)
	rollbar.SetEnvironment(cfg.Env)
	rollbar.SetServerHost(config.Hostname())
	rollbar.SetStackTracer(rollbarerrors.StackTracer)
}

// ReportError gửi lỗi 500 lên Rollbar (nếu đã cấu hình).
func ReportError(err error, req *http.Request, extras map[string]interface{}) {
	if !rollbarEnabled || err == nil {
		return
	}
	args := []interface{}{err}
	if req != nil {
		args = append(args, req)
	}
	if extras != nil {
		args = append(args, extras)
	}
	rollbar.Error(args...)
}

func CloseRollbar() {
	if rollbarEnabled {
		rollbar.Close()
	}
}

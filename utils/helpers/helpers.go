package helpers

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/abhissng/chargehub/utils/constant"
	"github.com/abhissng/chargehub/utils/types"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// IsEmpty reports whether s is empty or whitespace only.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// FetchErrorStrings returns a slice of strings containing the error messages
func FetchErrorStrings(errs []error) []string {
	errStrings := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			errStrings = append(errStrings, err.Error())
		}
	}
	return errStrings
}

// FetchHTTPStatusCode returns the HTTP status code associated with the response type
func FetchHTTPStatusCode(response types.ResponseErrorType) int {
	switch response {
	case constant.BadRequest:
		return http.StatusBadRequest
	case constant.Unauthorized:
		return http.StatusUnauthorized
	case constant.Forbidden:
		return http.StatusForbidden
	case constant.NotFound:
		return http.StatusNotFound
	case constant.AlreadyExists:
		return http.StatusConflict
	case constant.TooMany:
		return http.StatusTooManyRequests
	case constant.Unavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// IsProdEnvironment returns true if Environment is set to "prod" or "production"
func IsProdEnvironment() bool {
	switch GetEnvironment() {
	case "prod", "production":
		return true
	default:
		return false
	}
}

// GetEnvironment resolves the run environment from the process env, falling back to viper.
func GetEnvironment() string {
	if os.Getenv(constant.Environment) != "" {
		return os.Getenv(constant.Environment)
	}

	if os.Getenv(constant.RunMode) != "" {
		return os.Getenv(constant.RunMode)
	}

	return viper.GetString("env")
}

// JoinHostPort builds a listen address; an empty host listens on every interface.
func JoinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// RecoverException recovers from panics and logs the stack trace
func RecoverException(panic any) {
	if panic != nil {
		stack := debug.Stack()
		Println(constant.ERROR, "Exception occured", string(stack))
	}
}

// Println prints a message with the specified log mode and color
func Println(mode types.LogMode, args ...any) {
	// Get current time and format it (e.g., "2025-03-04 15:30:45")
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	fmt.Println(colorFor(mode) + "[" + timestamp + "] [" + mode.String() + "] " + fmt.Sprint(args...) + constant.ResetColor)
}

// Printf prints a formatted message with the specified log mode and color
func Printf(mode types.LogMode, format string, args ...any) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	format = "[" + timestamp + "] [" + mode.String() + "] " + format
	fmt.Printf(colorFor(mode)+format+constant.ResetColor, args...)
}

func colorFor(mode types.LogMode) string {
	switch mode {
	case constant.INFO:
		return constant.GreenColor
	case constant.WARN:
		return constant.YellowColor
	case constant.ERROR, constant.FATAL:
		return constant.RedColor
	case constant.DEBUG:
		return constant.BlueColor
	default:
		return constant.ResetColor
	}
}

// TailCallerEncoder keeps the last n path segments of the caller.
func TailCallerEncoder(n int) zapcore.CallerEncoder {
	if n <= 0 {
		return zapcore.ShortCallerEncoder
	}
	return func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		path := caller.File

		sep := 0
		i := len(path) - 1
		for ; i >= 0; i-- {
			c := path[i]
			if c == '/' || c == '\\' {
				sep++
				if sep == n {
					break
				}
			}
		}
		start := i + 1
		if start < 0 || start > len(path) {
			start = 0
		}
		tail := path[start:]

		// Normalize only if needed (Windows paths)
		if strings.IndexByte(tail, '\\') >= 0 {
			tail = strings.ReplaceAll(tail, "\\", "/")
		}

		var sb strings.Builder
		sb.Grow(len(tail) + 12)
		sb.WriteString(tail)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(caller.Line))

		enc.AppendString(sb.String())
	}
}

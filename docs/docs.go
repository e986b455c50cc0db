// Package docs serves the OpenAPI document of the documented routes and the
// Swagger UI that renders it.
package docs

import (
	"net/http"
	"strings"

	"github.com/abhissng/chargehub/adapters/gin/server"
	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SpecFile is the name of the generated document under the docs path.
const SpecFile = "openapi.json"

// Expose mounts the UI at <path>/*any and the document at <path>/openapi.json.
// The document is generated per request so routes registered later are included.
func Expose(srv *server.Server, cfg *config.SwaggerConfig, logger *log.Log) error {
	if cfg == nil {
		return nil
	}
	if logger == nil {
		logger = log.NewNop()
	}

	base := "/" + strings.Trim(cfg.Path, "/")
	if base == "/" {
		base = constant.DefaultDocPath
	}
	title := cfg.Title
	if title == "" {
		title = constant.ServiceName
	}

	generator := NewGenerator(title)
	ui := gin.WrapH(httpSwagger.Handler(httpSwagger.URL(base + "/" + SpecFile)))

	err := srv.Root().Handle(server.RouteSpec{Method: http.MethodGet, Path: base + "/*any"}, func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") != SpecFile {
			ui(c)
			return
		}
		c.Header("Access-Control-Allow-Origin", "*")
		c.JSON(http.StatusOK, generator.Generate(srv.DocumentedRoutes()))
	})
	if err != nil {
		return err
	}

	logger.Info("api docs exposed", log.String("path", base))
	return nil
}

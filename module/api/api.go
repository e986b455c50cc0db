// Package api turns the capability table of a module API into HTTP routes on
// the listener. Registration happens once, when the API is constructed.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/abhissng/chargehub/adapters/gin/handler"
	"github.com/abhissng/chargehub/adapters/gin/server"
	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/adapters/validator"
	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/config"
	appctx "github.com/abhissng/chargehub/context"
	"github.com/abhissng/chargehub/module/registry"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/gin-gonic/gin"
)

// Listener is the part of the network listener the registrar needs.
type Listener interface {
	Root() *server.Router
	Documented() *server.Router
	Validator() *validator.Validator
}

// Module is what the registrar needs from the module behind an API.
type Module interface {
	Group() ocpp.EventGroup
	Config() *config.SystemConfig
	SetConfig(cfg *config.SystemConfig)
}

// Base is embedded by every module API. It remembers the routes it registered.
type Base[M Module] struct {
	module M
	prefix string
	logger *log.Log
	routes []string
}

// Module returns the module the API serves.
func (b *Base[M]) Module() M {
	return b.module
}

// Group returns the event group of the module.
func (b *Base[M]) Group() ocpp.EventGroup {
	return b.module.Group()
}

// Prefix returns the endpoint prefix the routes were registered under.
func (b *Base[M]) Prefix() string {
	return b.prefix
}

// Routes lists the registered routes as "METHOD path", in registration order.
func (b *Base[M]) Routes() []string {
	return append([]string(nil), b.routes...)
}

// Logger returns the API logger.
func (b *Base[M]) Logger() *log.Log {
	return b.logger
}

// Register materializes every binding of caps, plus GET and PUT on the
// systemconfig data route, with self as the receiver of the handlers.
func Register[T any, M Module](self T, module M, listener Listener, logger *log.Log, caps *registry.Table[T]) (*Base[M], error) {
	if logger == nil {
		logger = log.NewNop()
	}
	group := module.Group()
	cfg := module.Config()

	prefix := ""
	if section := cfg.Section(group.String()); section != nil {
		prefix = section.EndpointPrefix
	}
	messageRouter, dataRouter := listener.Root(), listener.Root()
	if cfg != nil && cfg.Util.Swagger != nil {
		if cfg.Util.Swagger.ExposeMessage {
			messageRouter = listener.Documented()
		}
		if cfg.Util.Swagger.ExposeData {
			dataRouter = listener.Documented()
		}
	}

	base := &Base[M]{
		module: module,
		prefix: prefix,
		logger: logger.With(log.Component(group.String() + "-api")),
	}

	for _, binding := range caps.Actions() {
		spec := server.RouteSpec{
			Method:      http.MethodPost,
			Path:        MessagePath(prefix, binding.Action),
			Tag:         group.String(),
			Summary:     binding.Action.String(),
			OperationID: group.String() + binding.Action.String(),
			Query:       registry.Call{},
			Body:        binding.Schema(),
			Response:    ocpp.MessageConfirmation{},
		}
		if err := base.handle(messageRouter, spec, actionHandler(self, binding, listener)); err != nil {
			return nil, err
		}
	}

	explicitConfig := map[ocpp.HTTPMethod]bool{}
	for _, binding := range caps.DataBindings() {
		if binding.Namespace == ocpp.SystemConfigNamespace {
			explicitConfig[binding.Method] = true
		}
		spec := server.RouteSpec{
			Method:      binding.Method.String(),
			Path:        DataPath(prefix, binding.Namespace),
			Tag:         group.String(),
			Summary:     binding.Method.String() + " " + binding.Namespace.String(),
			OperationID: group.String() + strings.ToLower(binding.Method.String()) + binding.Namespace.String(),
		}
		if binding.QuerySchema != nil {
			spec.Query = binding.QuerySchema()
		}
		if binding.BodySchema != nil {
			spec.Body = binding.BodySchema()
		}
		if err := base.handle(dataRouter, spec, dataHandler(self, binding, listener)); err != nil {
			return nil, err
		}
	}

	if err := base.registerSystemConfig(dataRouter, listener, explicitConfig); err != nil {
		return nil, err
	}
	return base, nil
}

func (b *Base[M]) handle(router *server.Router, spec server.RouteSpec, fn handler.RequestHandler) error {
	route := spec.Method + " " + spec.Path
	if err := router.Handle(spec, handler.ExecuteControllerHandler(b.logger, route, fn)); err != nil {
		return err
	}
	b.routes = append(b.routes, route)
	b.logger.Debug(constant.RouteRegistered, log.String("route", route), log.Bool("documented", router.IsDocumented()))
	return nil
}

func (b *Base[M]) registerSystemConfig(router *server.Router, listener Listener, explicit map[ocpp.HTTPMethod]bool) error {
	path := DataPath(b.prefix, ocpp.SystemConfigNamespace)
	group := b.Group().String()

	if !explicit[ocpp.Get] {
		spec := server.RouteSpec{
			Method:      http.MethodGet,
			Path:        path,
			Tag:         group,
			Summary:     "Read the system configuration",
			OperationID: group + "getSystemConfig",
			Response:    config.SystemConfig{},
		}
		if err := b.handle(router, spec, func(*gin.Context) (any, error) {
			return b.module.Config(), nil
		}); err != nil {
			return err
		}
	}

	if !explicit[ocpp.Put] {
		spec := server.RouteSpec{
			Method:      http.MethodPut,
			Path:        path,
			Tag:         group,
			Summary:     "Replace the system configuration",
			OperationID: group + "putSystemConfig",
			Body:        config.SystemConfig{},
			Response:    config.SystemConfig{},
		}
		if err := b.handle(router, spec, func(c *gin.Context) (any, error) {
			next := &config.SystemConfig{}
			if err := bindBody(c, listener.Validator(), next); err != nil {
				return nil, err
			}
			next.CarrySecrets(b.module.Config())
			b.module.SetConfig(next)
			b.logger.Info(constant.ConfigUpdated)
			return next, nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func actionHandler[T any](self T, binding registry.ActionBinding[T], listener Listener) handler.RequestHandler {
	return func(c *gin.Context) (any, error) {
		v := listener.Validator()
		var call registry.Call
		if errs := v.BindQuery(&call, c.Request.URL.Query()); len(errs) > 0 {
			return nil, blame.RequestQueryInvalidError(errs)
		}
		payload := binding.Schema()
		if err := bindBody(c, v, payload); err != nil {
			return nil, err
		}
		return binding.Invoke(self, requestContext(c), call, payload)
	}
}

func dataHandler[T any](self T, binding registry.DataBinding[T], listener Listener) handler.RequestHandler {
	return func(c *gin.Context) (any, error) {
		v := listener.Validator()
		var query, body any
		if binding.QuerySchema != nil {
			query = binding.QuerySchema()
			if errs := v.BindQuery(query, c.Request.URL.Query()); len(errs) > 0 {
				return nil, blame.RequestQueryInvalidError(errs)
			}
		}
		if binding.BodySchema != nil {
			body = binding.BodySchema()
			if err := bindBody(c, v, body); err != nil {
				return nil, err
			}
		}
		return binding.Invoke(self, requestContext(c), query, body)
	}
}

func bindBody(c *gin.Context, v *validator.Validator, dst any) error {
	raw, err := c.GetRawData()
	if err != nil {
		return blame.RequestBodyInvalidError(map[string]string{validator.BodyKey: err.Error()})
	}
	if errs := v.Bind(dst, raw); len(errs) > 0 {
		return blame.RequestBodyInvalidError(errs)
	}
	return nil
}

// requestContext carries the correlation id of the request into the handler.
func requestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if id := c.GetString(constant.CorrelationID); id != "" {
		ctx = appctx.WithCorrelationID(ctx, id)
	}
	return ctx
}

// MessagePath returns "/ocpp[/<prefix>]/<lower(action)>".
func MessagePath(prefix string, action ocpp.CallAction) string {
	return join(constant.MessagePrefix, prefix, action.Path())
}

// DataPath returns "/data[/<prefix>]/<lower(namespace)>".
func DataPath(prefix string, namespace ocpp.Namespace) string {
	return join(constant.DataPrefix, prefix, namespace.Path())
}

func join(root, prefix, leaf string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return root + "/" + leaf
	}
	return root + "/" + prefix + "/" + leaf
}

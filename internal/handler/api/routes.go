package api

import "github.com/labstack/echo/v4"

// Routes bundles every HTTP surface the service exposes.
type Routes struct {
	Reports *ReportsEchoHandler
	Stream  *RunStreamHandler
}

func NewRoutes(reports *ReportsEchoHandler, stream *RunStreamHandler) *Routes {
	return &Routes{Reports: reports, Stream: stream}
}

func (r *Routes) RegisterRoutes(e *echo.Echo) {
	r.Reports.RegisterRoutes(e)
	if r.Stream != nil {
		r.Stream.RegisterRoutes(e)
	}
}

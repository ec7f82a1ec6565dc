// Package web serves the host page, the JSON API, charts and downloads.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/helloworldpark/tickle-stock-info/analyser"
	"github.com/helloworldpark/tickle-stock-info/commons"
	"github.com/helloworldpark/tickle-stock-info/controller"
	"github.com/helloworldpark/tickle-stock-info/export"
	"github.com/helloworldpark/tickle-stock-info/logger"
	"github.com/helloworldpark/tickle-stock-info/storage"
	"github.com/helloworldpark/tickle-stock-info/structs"
	"github.com/helloworldpark/tickle-stock-info/watcher"
)

//go:embed templates/*.html
var templatesFS embed.FS

const headRows = 5

var newError = commons.NewTaggedWrapper("Web")

var templateFuncs = template.FuncMap{
	"date": func(ts int64) string {
		return commons.Unix(ts).Format(dateLayout)
	},
	"price": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"percent": func(v float64) string {
		return fmt.Sprintf("%+.2f%%", 100*v)
	},
}

type handler struct {
	general *controller.General
}

// NewRouter returns the gin engine serving g.
func NewRouter(g *controller.General) *gin.Engine {
	h := &handler{general: g}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")))

	router.GET("/", h.index)
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/chart.png", h.chart)
	router.GET("/download/:file", h.download)

	api := router.Group("/api")
	api.GET("/listings", h.listings)
	api.GET("/ticker", h.ticker)
	api.GET("/prices", h.prices)
	api.POST("/publish", h.publish)
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("[Web] %s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// errorStatus maps an error to the HTTP status reported to the client.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, controller.ErrInvalidQuery),
		errors.Is(err, watcher.ErrUnsupportedSegment):
		return http.StatusBadRequest
	case errors.Is(err, watcher.ErrCompanyNotFound),
		errors.Is(err, watcher.ErrNoPriceData),
		errors.Is(err, controller.ErrUnknownFormat):
		return http.StatusNotFound
	case errors.Is(err, watcher.ErrUpstreamUnavailable),
		errors.Is(err, watcher.ErrSchemaMismatch):
		return http.StatusBadGateway
	case errors.Is(err, storage.ErrStorageDisabled):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("[Web] %s: %s", c.Request.URL.Path, err.Error())
	} else {
		logger.Warn("[Web] %s: %s", c.Request.URL.Path, err.Error())
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

type pageData struct {
	Form      form
	Markets   []string
	Providers []string
	Error     string
	Result    *controller.Result
	Head      []structs.StockPrice
	ChartURL  template.URL
	CSVURL    template.URL
	ExcelURL  template.URL
}

func (h *handler) index(c *gin.Context) {
	defaults := defaultForm
	if providers := h.general.Providers(); len(providers) > 0 {
		defaults.Provider = providers[0]
	}
	f := readForm(c, defaults)
	data := pageData{
		Form:      f,
		Markets:   []string{structs.KOSPI.String(), structs.KOSDAQ.String()},
		Providers: h.general.Providers(),
	}
	if c.Query("submit") == "" {
		c.HTML(http.StatusOK, "index.html", data)
		return
	}

	result, err := h.lookup(c, f)
	if err != nil {
		logger.Warn("[Web] %s", err.Error())
		data.Error = err.Error()
		c.HTML(errorStatus(err), "index.html", data)
		return
	}
	encoded := f.encode()
	data.Result = &result
	data.Head = result.Head(headRows)
	data.ChartURL = template.URL("/chart.png?" + encoded)
	data.CSVURL = template.URL("/download/" + export.CSVFileName + "?" + encoded)
	data.ExcelURL = template.URL("/download/" + export.ExcelFileName + "?" + encoded)
	c.HTML(http.StatusOK, "index.html", data)
}

func (h *handler) lookup(c *gin.Context, f form) (controller.Result, error) {
	q, err := f.query()
	if err != nil {
		return controller.Result{}, err
	}
	return h.general.Lookup(c.Request.Context(), q)
}

func (h *handler) listings(c *gin.Context) {
	market, err := structs.ParseMarket(c.Query("market"))
	if err != nil {
		abortWithError(c, newError(controller.ErrInvalidQuery, err.Error()))
		return
	}
	stocks, err := h.general.Listings(c.Request.Context(), market)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"market": market, "stocks": stocks})
}

func (h *handler) ticker(c *gin.Context) {
	market, err := structs.ParseMarket(c.DefaultQuery("market", defaultForm.Market))
	if err != nil {
		abortWithError(c, newError(controller.ErrInvalidQuery, err.Error()))
		return
	}
	ticker, err := h.general.Ticker(c.Request.Context(), c.Query("name"), market)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticker": ticker})
}

func (h *handler) prices(c *gin.Context) {
	result, err := h.lookup(c, readForm(c, form{Market: defaultForm.Market}))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) chart(c *gin.Context) {
	opts := analyser.ChartOptions{Kind: analyser.ChartKind(c.DefaultQuery("kind", string(analyser.LineChart)))}
	if opts.Kind != analyser.LineChart && opts.Kind != analyser.CandleChart {
		abortWithError(c, newError(controller.ErrInvalidQuery, "unknown chart kind "+string(opts.Kind)))
		return
	}
	if ma := c.Query("ma"); ma != "" {
		window, err := strconv.Atoi(ma)
		if err != nil || window < 0 {
			abortWithError(c, newError(controller.ErrInvalidQuery, "ma must be a positive number"))
			return
		}
		opts.MovingAverage = window
	}
	if trend := c.Query("trend"); trend != "" {
		on, err := strconv.ParseBool(trend)
		if err != nil {
			abortWithError(c, newError(controller.ErrInvalidQuery, "trend must be true or false"))
			return
		}
		opts.Trend = on
	}

	result, err := h.lookup(c, readForm(c, form{Market: defaultForm.Market}))
	if err != nil {
		abortWithError(c, err)
		return
	}
	png, err := h.general.Chart(result, opts)
	if err != nil {
		if errors.Is(err, analyser.ErrNotEnoughData) {
			err = newError(controller.ErrInvalidQuery, err.Error())
		}
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *handler) download(c *gin.Context) {
	var format string
	switch c.Param("file") {
	case export.CSVFileName:
		format = controller.FormatCSV
	case export.ExcelFileName:
		format = controller.FormatExcel
	default:
		abortWithError(c, newError(controller.ErrUnknownFormat, c.Param("file")))
		return
	}

	result, err := h.lookup(c, readForm(c, form{Market: defaultForm.Market}))
	if err != nil {
		abortWithError(c, err)
		return
	}
	contents, filename, contentType, err := h.general.Export(result, format)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, contents)
}

func (h *handler) publish(c *gin.Context) {
	result, err := h.lookup(c, readForm(c, form{Market: defaultForm.Market}))
	if err != nil {
		abortWithError(c, err)
		return
	}
	urls, err := h.general.Publish(c.Request.Context(), result)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"urls": urls})
}

package web

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/helloworldpark/tickle-stock-info/commons"
	"github.com/helloworldpark/tickle-stock-info/controller"
	"github.com/helloworldpark/tickle-stock-info/structs"
)

const dateLayout = "2006-01-02"

// form holds the raw fields of the host page.
type form struct {
	Name     string
	Market   string
	From     string
	To       string
	Provider string
}

var defaultForm = form{
	Name:   "NAVER",
	Market: structs.KOSPI.String(),
	From:   "2019-01-01",
	To:     "2021-12-31",
}

func readForm(c *gin.Context, defaults form) form {
	return form{
		Name:     c.DefaultQuery("name", defaults.Name),
		Market:   c.DefaultQuery("market", defaults.Market),
		From:     c.DefaultQuery("from", defaults.From),
		To:       c.DefaultQuery("to", defaults.To),
		Provider: c.DefaultQuery("provider", defaults.Provider),
	}
}

func (f form) encode() string {
	v := url.Values{}
	v.Set("name", f.Name)
	v.Set("market", f.Market)
	v.Set("from", f.From)
	v.Set("to", f.To)
	if f.Provider != "" {
		v.Set("provider", f.Provider)
	}
	return v.Encode()
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), commons.AsiaSeoul)
	if err != nil {
		return time.Time{}, newError(controller.ErrInvalidQuery, field+" must be YYYY-MM-DD")
	}
	return t, nil
}

func (f form) query() (controller.Query, error) {
	market, err := structs.ParseMarket(f.Market)
	if err != nil {
		return controller.Query{}, newError(controller.ErrInvalidQuery, err.Error())
	}
	from, err := parseDate("from", f.From)
	if err != nil {
		return controller.Query{}, err
	}
	to, err := parseDate("to", f.To)
	if err != nil {
		return controller.Query{}, err
	}
	return controller.Query{
		CompanyName: f.Name,
		Market:      market,
		Range:       structs.DateRange{From: from, To: to},
		Provider:    f.Provider,
	}, nil
}

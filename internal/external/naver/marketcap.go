package naver

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MarketCapEntry is one row from the Naver market cap ranking page
type MarketCapEntry struct {
	Ticker     string
	Name       string
	Market     string
	ClosePrice int64
	MarketCap  int64 // 원 단위
}

// 시가총액 페이지는 억원 단위로 표기
const eokWon = 100_000_000

var marketCodes = map[string]string{
	"KOSPI":  "0",
	"KOSDAQ": "1",
}

// FetchMarketCapPage scrapes one page of the Naver Finance market cap
// ranking (50 rows per page). Used as the secondary market cap source when
// the KRX endpoint is unavailable.
func (c *Client) FetchMarketCapPage(ctx context.Context, market string, page int) ([]MarketCapEntry, error) {
	sosok, ok := marketCodes[strings.ToUpper(market)]
	if !ok {
		return nil, fmt.Errorf("unsupported market: %s", market)
	}

	params := url.Values{
		"sosok": {sosok},
		"page":  {strconv.Itoa(page)},
	}

	html, err := c.fetchHTML(ctx, "/sise/sise_market_sum.naver", params)
	if err != nil {
		return nil, fmt.Errorf("fetch market cap page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse market cap page: %w", err)
	}

	var entries []MarketCapEntry
	doc.Find("table.type_2 tbody tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("td a.tltle")
		href, exists := link.Attr("href")
		if !exists {
			return // 구분선/빈 행
		}

		ticker := tickerFromHref(href)
		if ticker == "" {
			return
		}

		cells := row.Find("td.number")
		if cells.Length() < 5 {
			return
		}

		entries = append(entries, MarketCapEntry{
			Ticker:     ticker,
			Name:       strings.TrimSpace(link.Text()),
			Market:     strings.ToUpper(market),
			ClosePrice: parseTableNumber(cells.Eq(0).Text()),
			MarketCap:  parseTableNumber(cells.Eq(4).Text()) * eokWon,
		})
	})

	c.logger.WithFields(map[string]interface{}{
		"market": market,
		"page":   page,
		"count":  len(entries),
	}).Debug("Fetched market cap page")
	return entries, nil
}

// tickerFromHref extracts the stock code from a main page link
// (/item/main.naver?code=005930)
func tickerFromHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get("code")
}

// parseTableNumber parses comma-separated numbers from table cells
func parseTableNumber(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

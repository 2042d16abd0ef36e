package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/bestk/backend/internal/breakout"
)

// FetchPrices fetches daily OHLCV bars from the Naver Finance chart API
// ⭐ SSOT: Naver 가격 조회는 이 함수에서만
func (c *Client) FetchPrices(ctx context.Context, ticker string, from, to time.Time) ([]breakout.PriceBar, error) {
	fullURL := fmt.Sprintf(
		"%s/siseJson.naver?symbol=%s&requestType=1&startTime=%s&endTime=%s&timeframe=day",
		c.chartBaseURL, ticker, from.Format("20060102"), to.Format("20060102"),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Referer", "https://finance.naver.com/")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	bars, err := parsePriceResponse(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(bars),
	}).Debug("Fetched prices")
	return bars, nil
}

// parsePriceResponse parses the chart API body. The payload uses single
// quotes, so it is normalized before JSON decoding; malformed payloads fall
// back to regex extraction.
func parsePriceResponse(body string) ([]breakout.PriceBar, error) {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")

	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err == nil {
		return parsePriceJSON(rawData), nil
	}

	return parsePriceRegex(body), nil
}

// parsePriceJSON parses the decoded JSON array format
func parsePriceJSON(rawData [][]interface{}) []breakout.PriceBar {
	var bars []breakout.PriceBar
	for i, row := range rawData {
		if i == 0 || len(row) < 6 {
			continue // 헤더 행
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		date, err := parseChartDate(dateStr)
		if err != nil {
			continue
		}

		bars = append(bars, breakout.PriceBar{
			Date:   date,
			Open:   toFloat64(row[1]),
			High:   toFloat64(row[2]),
			Low:    toFloat64(row[3]),
			Close:  toFloat64(row[4]),
			Volume: int64(toFloat64(row[5])),
		})
	}
	return bars
}

var priceRowRe = regexp.MustCompile(`\["(\d{8})",\s*(\d+),\s*(\d+),\s*(\d+),\s*(\d+),\s*(\d+)\]`)

// parsePriceRegex extracts bars with a regex when JSON decoding fails
func parsePriceRegex(body string) []breakout.PriceBar {
	matches := priceRowRe.FindAllStringSubmatch(body, -1)

	var bars []breakout.PriceBar
	for _, match := range matches {
		if len(match) < 7 {
			continue
		}

		date, err := parseChartDate(match[1])
		if err != nil {
			continue
		}

		open, _ := strconv.ParseFloat(match[2], 64)
		high, _ := strconv.ParseFloat(match[3], 64)
		low, _ := strconv.ParseFloat(match[4], 64)
		closePrice, _ := strconv.ParseFloat(match[5], 64)
		volume, _ := strconv.ParseInt(match[6], 10, 64)

		bars = append(bars, breakout.PriceBar{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}
	return bars
}

// parseChartDate parses the YYYYMMDD date used by the chart API
func parseChartDate(s string) (time.Time, error) {
	s = strings.Trim(s, "\"")
	if len(s) == 10 {
		return time.Parse("2006-01-02", s)
	}
	return time.Parse("20060102", s)
}

// toFloat64 converts the mixed numeric types in the chart payload
func toFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	default:
		return 0
	}
}

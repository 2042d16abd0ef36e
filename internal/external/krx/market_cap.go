package krx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/bestk/backend/pkg/redis"
)

// MarketCapItem is one stock's market cap snapshot from the KRX API
type MarketCapItem struct {
	Ticker            string
	Name              string
	Market            string
	MarketCap         int64
	SharesOutstanding int64
	ClosePrice        int64
	TradeDate         time.Time
}

// krxMarketCapResponse is the raw KRX API response
type krxMarketCapResponse struct {
	OutBlock1 []krxMarketCapRow `json:"OutBlock_1"`
}

// krxMarketCapRow is a row in the KRX market cap response.
// 숫자 필드는 콤마가 포함된 문자열로 온다.
type krxMarketCapRow struct {
	ISU_SRT_CD string `json:"ISU_SRT_CD"` // 종목코드 (단축)
	ISU_ABBRV  string `json:"ISU_ABBRV"`  // 종목명
	TDD_CLSPRC string `json:"TDD_CLSPRC"` // 종가
	MKTCAP     string `json:"MKTCAP"`     // 시가총액
	LIST_SHRS  string `json:"LIST_SHRS"`  // 상장주식수
}

// FetchMarketCaps fetches market cap and shares outstanding from KRX for
// every stock in one market
// ⭐ SSOT: KRX 시가총액 조회는 이 함수에서만
func (c *Client) FetchMarketCaps(ctx context.Context, market string) ([]MarketCapItem, error) {
	krxURL := c.baseURL + "/comm/bldAttendant/getJsonData.cmd"

	var mktID string
	switch strings.ToUpper(market) {
	case "KOSPI":
		mktID = "STK"
	case "KOSDAQ":
		mktID = "KSQ"
	default:
		return nil, fmt.Errorf("unsupported market: %s", market)
	}

	trdDd := latestTradeDate(time.Now()).Format("20060102")

	formData := url.Values{
		"bld":         {"dbms/MDC/STAT/standard/MDCSTAT01501"},
		"locale":      {"ko_KR"},
		"mktId":       {mktID},
		"trdDd":       {trdDd},
		"share":       {"1"},
		"money":       {"1"},
		"csvxls_isNo": {"false"},
	}

	c.logger.WithFields(map[string]interface{}{
		"market":     market,
		"trade_date": trdDd,
	}).Info("Fetching market caps from KRX")

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, redis.KRXRateLimit); err != nil {
			return nil, fmt.Errorf("KRX rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, krxURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// KRX는 봇 요청을 차단하므로 브라우저 헤더가 필요하다
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Referer", c.baseURL+"/contents/MDC/MDI/mdiLoader/index.cmd?menuId=MDC0201020101")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("KRX API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return nil, fmt.Errorf("KRX API returned status %d: %s", resp.StatusCode, preview)
	}

	items, err := parseMarketCapResponse(body, strings.ToUpper(market), trdDd)
	if err != nil {
		preview := string(body)
		if len(preview) > 500 {
			preview = preview[:500]
		}
		c.logger.WithField("response_preview", preview).Error("Failed to parse KRX response")
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"market": market,
		"count":  len(items),
	}).Info("Fetched market caps from KRX")
	return items, nil
}

// FetchAllMarketCaps fetches market caps for both KOSPI and KOSDAQ
func (c *Client) FetchAllMarketCaps(ctx context.Context) ([]MarketCapItem, error) {
	var allItems []MarketCapItem

	kospiItems, err := c.FetchMarketCaps(ctx, "KOSPI")
	if err != nil {
		return nil, fmt.Errorf("fetch KOSPI market caps: %w", err)
	}
	allItems = append(allItems, kospiItems...)

	kosdaqItems, err := c.FetchMarketCaps(ctx, "KOSDAQ")
	if err != nil {
		return nil, fmt.Errorf("fetch KOSDAQ market caps: %w", err)
	}
	allItems = append(allItems, kosdaqItems...)

	c.logger.WithFields(map[string]interface{}{
		"kospi_count":  len(kospiItems),
		"kosdaq_count": len(kosdaqItems),
		"total_count":  len(allItems),
	}).Info("Fetched all market caps from KRX")
	return allItems, nil
}

// parseMarketCapResponse decodes the KRX payload into snapshot items
func parseMarketCapResponse(body []byte, market, trdDd string) ([]MarketCapItem, error) {
	var apiResp krxMarketCapResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("decode KRX response: %w", err)
	}

	tradeDate, _ := time.Parse("20060102", trdDd)

	items := make([]MarketCapItem, 0, len(apiResp.OutBlock1))
	for _, row := range apiResp.OutBlock1 {
		shares := parseKRXNumber(row.LIST_SHRS)

		// 필수 값 없는 행(스팩 등)은 건너뜀
		if row.ISU_SRT_CD == "" || shares == 0 {
			continue
		}

		items = append(items, MarketCapItem{
			Ticker:            row.ISU_SRT_CD,
			Name:              row.ISU_ABBRV,
			Market:            market,
			MarketCap:         parseKRXNumber(row.MKTCAP),
			SharesOutstanding: shares,
			ClosePrice:        parseKRXNumber(row.TDD_CLSPRC),
			TradeDate:         tradeDate,
		})
	}
	return items, nil
}

// latestTradeDate returns the most recent plausible trading day: before
// market close data for today is not published yet, and weekends roll back
// to Friday
func latestTradeDate(now time.Time) time.Time {
	d := now
	if d.Hour() < 16 {
		d = d.AddDate(0, 0, -1)
	}
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// parseKRXNumber parses the comma-separated KRX number format
func parseKRXNumber(s string) int64 {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

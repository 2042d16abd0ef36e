package naver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleChartBody = `[
	['날짜', '시가', '고가', '저가', '종가', '거래량', '외국인소진율'],
	["20260827", 71000, 72500, 70800, 72000, 12345678, 51.2],
	["20260828", 72000, 73000, 71500, 72800, 9876543, 51.3]
]`

func TestParsePriceResponse_JSON(t *testing.T) {
	bars, err := parsePriceResponse(sampleChartBody)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 71000.0, bars[0].Open)
	assert.Equal(t, 72500.0, bars[0].High)
	assert.Equal(t, 70800.0, bars[0].Low)
	assert.Equal(t, 72000.0, bars[0].Close)
	assert.Equal(t, int64(12345678), bars[0].Volume)

	assert.Equal(t, 72800.0, bars[1].Close)
}

func TestParsePriceResponse_RegexFallback(t *testing.T) {
	// JSON 파싱이 불가능한 변형 응답
	body := `garbage prefix
	["20260827", 71000, 72500, 70800, 72000, 12345678]
	trailing junk`

	bars, err := parsePriceResponse(body)
	require.NoError(t, err)
	require.Len(t, bars, 1)

	assert.Equal(t, 71000.0, bars[0].Open)
	assert.Equal(t, int64(12345678), bars[0].Volume)
}

func TestParsePriceResponse_SkipsMalformedRows(t *testing.T) {
	body := `[
	['날짜', '시가', '고가', '저가', '종가', '거래량'],
	["notadate", 1, 2, 3, 4, 5],
	["20260828", 72000, 73000, 71500, 72800, 100]
]`

	bars, err := parsePriceResponse(body)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), bars[0].Date)
}

func TestTickerFromHref(t *testing.T) {
	assert.Equal(t, "005930", tickerFromHref("/item/main.naver?code=005930"))
	assert.Equal(t, "", tickerFromHref("/sise/sise_index.naver"))
}

func TestParseTableNumber(t *testing.T) {
	assert.Equal(t, int64(4296712), parseTableNumber(" 4,296,712 "))
	assert.Equal(t, int64(0), parseTableNumber("-"))
	assert.Equal(t, int64(0), parseTableNumber(""))
}

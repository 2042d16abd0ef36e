package krx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarketCapResponse(t *testing.T) {
	body := []byte(`{
		"OutBlock_1": [
			{"ISU_SRT_CD": "005930", "ISU_ABBRV": "삼성전자", "TDD_CLSPRC": "72,000", "MKTCAP": "429,671,200,000,000", "LIST_SHRS": "5,969,782,550"},
			{"ISU_SRT_CD": "", "ISU_ABBRV": "무효행", "TDD_CLSPRC": "1", "MKTCAP": "1", "LIST_SHRS": "1"},
			{"ISU_SRT_CD": "900000", "ISU_ABBRV": "상장주식수없음", "TDD_CLSPRC": "100", "MKTCAP": "100", "LIST_SHRS": "-"}
		]
	}`)

	items, err := parseMarketCapResponse(body, "KOSPI", "20260828")
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "005930", items[0].Ticker)
	assert.Equal(t, "삼성전자", items[0].Name)
	assert.Equal(t, "KOSPI", items[0].Market)
	assert.Equal(t, int64(429_671_200_000_000), items[0].MarketCap)
	assert.Equal(t, int64(5_969_782_550), items[0].SharesOutstanding)
	assert.Equal(t, int64(72000), items[0].ClosePrice)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), items[0].TradeDate)
}

func TestParseMarketCapResponse_BadJSON(t *testing.T) {
	_, err := parseMarketCapResponse([]byte(`<html>blocked</html>`), "KOSPI", "20260828")
	assert.Error(t, err)
}

func TestLatestTradeDate(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "weekday after close",
			now:  time.Date(2026, 8, 26, 17, 0, 0, 0, time.UTC), // Wednesday
			want: time.Date(2026, 8, 26, 17, 0, 0, 0, time.UTC),
		},
		{
			name: "weekday before close rolls back one day",
			now:  time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC),
			want: time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday rolls back to friday",
			now:  time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC),
			want: time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC),
		},
		{
			name: "monday morning rolls back to friday",
			now:  time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
			want: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, latestTradeDate(tt.now))
		})
	}
}

func TestParseKRXNumber(t *testing.T) {
	assert.Equal(t, int64(429671200000000), parseKRXNumber("429,671,200,000,000"))
	assert.Equal(t, int64(0), parseKRXNumber("-"))
	assert.Equal(t, int64(0), parseKRXNumber(""))
	assert.Equal(t, int64(72000), parseKRXNumber(" 72,000 "))
}

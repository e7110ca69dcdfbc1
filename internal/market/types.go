package market

import (
	"context"
	"errors"
	"time"
)

// ErrNoData reports that a source responded but had no rows for the
// requested date, e.g. an exchange holiday. It is distinct from a
// transport or parse failure, which is any other non-nil error.
var ErrNoData = errors.New("no data for date")

// DailySource fetches a single metric value for one entity on one date.
// Implementations return ErrNoData (possibly wrapped) for an empty day
// and any other error for a transport or parse failure. The collector
// treats both as a skipped day.
type DailySource interface {
	FetchDaily(ctx context.Context, entityID string, date time.Time) (float64, error)
}

// DailySourceFunc adapts a function to the DailySource interface.
type DailySourceFunc func(ctx context.Context, entityID string, date time.Time) (float64, error)

// FetchDaily calls f.
func (f DailySourceFunc) FetchDaily(ctx context.Context, entityID string, date time.Time) (float64, error) {
	return f(ctx, entityID, date)
}

// Point is one dated observation in a metric series.
type Point struct {
	Date  time.Time
	Value float64
}

// Series is a chronologically ascending sequence of observations for
// one metric and one entity. Missing dates are simply absent.
type Series []Point

// Values returns the values in series order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Quote is one security's daily closing quote. Volume is in lots.
type Quote struct {
	Code      string
	Name      string
	Close     float64
	Change    float64
	PctChange float64
	Volume    int64
}

// InstitutionalFlow is one security's daily institutional net trading.
// All quantities are in shares as reported by the venues.
type InstitutionalFlow struct {
	Code       string
	Name       string
	ForeignNet int64
	TrustNet   int64
	DealerNet  int64
}

// MarginBalance is one security's daily margin and short-sale position.
// All quantities are in lots as reported by the venues.
type MarginBalance struct {
	Code          string
	MarginBalance int64
	MarginChange  int64
	ShortBalance  int64
	ShortChange   int64
}

// BrokerTrade is one broker branch's buy/sell volume for a security on
// one day, in shares.
type BrokerTrade struct {
	BrokerID string
	Buy      int64
	Sell     int64
}

// MarketInstitutional is the whole-market institutional net trading
// summary for one day. Amounts are in hundred-million TWD (億元), the
// unit the exchange publishes its aggregate table in.
type MarketInstitutional struct {
	ForeignNet float64
	TrustNet   float64
	DealerNet  float64
	TotalNet   float64
}

// Candle is one day's OHLCV bar. Volume is in shares.
type Candle struct {
	Date   time.Time
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

package timeframe

import (
	"fmt"
	"time"
)

// Timeframe is one of the fixed candle bucket widths.
type Timeframe string

const (
	Seconds15 Timeframe = "15s"
	Minute1   Timeframe = "1m"
	Minute5   Timeframe = "5m"
	Minute15  Timeframe = "15m"
	Minute30  Timeframe = "30m"
	Hour1     Timeframe = "1h"
)

// Default is used when a request carries a blank or unknown timeframe code.
const Default = Minute15

// Meta holds the bucket width for a timeframe.
type Meta struct {
	Code    string
	Seconds int64
}

// validTimeframes maps each Timeframe to its bucket width.
var validTimeframes = map[Timeframe]Meta{
	Seconds15: {Code: "15s", Seconds: 15},
	Minute1:   {Code: "1m", Seconds: 60},
	Minute5:   {Code: "5m", Seconds: 300},
	Minute15:  {Code: "15m", Seconds: 900},
	Minute30:  {Code: "30m", Seconds: 1800},
	Hour1:     {Code: "1h", Seconds: 3600},
}

// All lists every timeframe in ascending width order.
var All = []Timeframe{Seconds15, Minute1, Minute5, Minute15, Minute30, Hour1}

// IsValid checks if the Timeframe is one of the predefined entries.
func (tf Timeframe) IsValid() bool {
	_, ok := validTimeframes[tf]
	return ok
}

// Code returns the wire code for the timeframe, e.g. "15m".
func (tf Timeframe) Code() string {
	return string(tf)
}

// Width returns the bucket width in seconds.
func (tf Timeframe) Width() int64 {
	return validTimeframes[tf].Seconds
}

// Duration returns the bucket width as a time.Duration.
func (tf Timeframe) Duration() time.Duration {
	return time.Duration(tf.Width()) * time.Second
}

// Bucket aligns an epoch-seconds timestamp down to the timeframe boundary.
func (tf Timeframe) Bucket(epochSeconds int64) int64 {
	w := tf.Width()
	return epochSeconds - (epochSeconds % w)
}

// Parse converts a timeframe code into a Timeframe.
func Parse(code string) (Timeframe, error) {
	tf := Timeframe(code)
	if !tf.IsValid() {
		return "", fmt.Errorf("invalid timeframe: %q", code)
	}
	return tf, nil
}

// ParseOrDefault converts a timeframe code, falling back to Default for
// blank or unknown codes.
func ParseOrDefault(code string) Timeframe {
	if tf, err := Parse(code); err == nil {
		return tf
	}
	return Default
}

// Package wdc fetches and parses monthly Dst bulletins from the WDC for
// Geomagnetism, Kyoto.
//
// Bulletin format (one line per day, fixed width):
//
//	DST2404*01RRX020     -10 -12 -15 ...
//	^^^                  3-letter record marker
//	   ^^ ^^  ^^         year (2 digits), month, day at offsets 3, 5, 8
//	offsets 20..116      24 hourly values, 4 characters each, right-aligned
//	offset 116..120      daily mean (ignored; it is derivable)
//
// Trailer and blank lines do not carry the record marker and are skipped.
// The two-digit year is expanded with the current century, matching the
// upstream service which only publishes bulletins from 2000 onward.
package wdc

import (
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/dst-index-etl/internal/domain"
)

const (
	recordMarker = "DST"

	hourlyOffset = 20 // first hourly value
	hourlyWidth  = 4
	hoursPerLine = 24
	lineMinLen   = hourlyOffset + hoursPerLine*hourlyWidth
)

// ParseBulletin converts one monthly bulletin into hourly samples, in the
// order the bulletin lists them. Lines without the record marker (headers,
// trailers, blanks) are skipped; a marked line that is truncated or holds
// a non-numeric field produces a *domain.ParseError carrying the 1-based
// line number.
func ParseBulletin(text string) ([]domain.IntensitySample, error) {
	var samples []domain.IntensitySample

	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, recordMarker) {
			continue
		}
		daily, err := parseLine(lineNo+1, line)
		if err != nil {
			return nil, err
		}
		samples = append(samples, daily...)
	}
	return samples, nil
}

// parseLine expands one bulletin line into its 24 hourly samples.
func parseLine(lineNo int, line string) ([]domain.IntensitySample, error) {
	if len(line) < lineMinLen {
		return nil, &domain.ParseError{
			Line:  lineNo,
			Field: "line shorter than " + strconv.Itoa(lineMinLen) + " characters",
		}
	}

	year, err := atoiField(lineNo, "year", line[3:5])
	if err != nil {
		return nil, err
	}
	month, err := atoiField(lineNo, "month", line[5:7])
	if err != nil {
		return nil, err
	}
	day, err := atoiField(lineNo, "day", line[8:10])
	if err != nil {
		return nil, err
	}

	samples := make([]domain.IntensitySample, 0, hoursPerLine)
	for h := 0; h < hoursPerLine; h++ {
		offset := hourlyOffset + h*hourlyWidth
		nT, err := atoiField(lineNo, "hour "+strconv.Itoa(h), line[offset:offset+hourlyWidth])
		if err != nil {
			return nil, err
		}
		samples = append(samples, domain.IntensitySample{
			Timestamp: time.Date(2000+year, time.Month(month), day, h, 0, 0, 0, time.UTC),
			NanoTesla: float64(nT),
		})
	}
	return samples, nil
}

func atoiField(lineNo int, field, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &domain.ParseError{Line: lineNo, Field: field + " field " + strconv.Quote(raw), Err: err}
	}
	return v, nil
}

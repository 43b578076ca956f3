package nl2sql

import (
	"regexp"
	"strings"
)

type Strategy string

const (
	StrategyFenced Strategy = "fenced"
	StrategySelect Strategy = "select"
	StrategyRaw    Strategy = "raw"
	StrategyCustom Strategy = "custom"
)

type Extractor interface {
	Extract(reply string) string
}

var (
	fencedSQLPattern = regexp.MustCompile("(?s)```sql(.*?)```")
	selectPattern    = regexp.MustCompile(`(?is)SELECT\s.*?;?\s*$`)
)

// HeuristicExtractor pulls SQL out of free-form model output: a ```sql fence
// first, then a trailing SELECT statement, then the whole reply.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(reply string) string {
	sql, _ := HeuristicExtractor{}.ExtractWithStrategy(reply)
	return sql
}

func (HeuristicExtractor) ExtractWithStrategy(reply string) (string, Strategy) {
	if match := fencedSQLPattern.FindStringSubmatch(reply); match != nil {
		return strings.TrimSpace(match[1]), StrategyFenced
	}
	if match := selectPattern.FindString(reply); match != "" {
		return strings.TrimSpace(match), StrategySelect
	}
	return strings.TrimSpace(reply), StrategyRaw
}

type strategyExtractor interface {
	ExtractWithStrategy(reply string) (string, Strategy)
}

func extract(extractor Extractor, reply string) (string, Strategy) {
	if withStrategy, ok := extractor.(strategyExtractor); ok {
		return withStrategy.ExtractWithStrategy(reply)
	}
	return extractor.Extract(reply), StrategyCustom
}

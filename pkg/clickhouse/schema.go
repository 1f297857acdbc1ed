package clickhouse

import "fmt"

// DailyBarsSchema returns the DDL for the daily bar archive. Rows are
// deduplicated on (symbol, interval, date) keeping the latest ingest.
func DailyBarsSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    date        Date,
    symbol      LowCardinality(String),
    interval    LowCardinality(String),
    open        Float64,
    high        Float64,
    low         Float64,
    close       Float64,
    volume      Float64,
    source      LowCardinality(String),
    ingested_at DateTime64(3) DEFAULT now64(3)
)
ENGINE = ReplacingMergeTree(ingested_at)
PARTITION BY toYear(date)
ORDER BY (symbol, interval, date)`, database, table),
	}
}

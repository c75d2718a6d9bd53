// Package ingest turns raw household data into the hourly records consumed
// by the optimizer.
//
// Three sources are combined: an hourly consumption and spot price feed
// (Tibber export format), a normalized PV yield year (PVWatts v8 hourly
// output for a 1 kW array) and a Tariff that derives the import and export
// prices actually paid from the spot price. Files already holding resolved
// records can be read with LoadRecordsCSV.
package ingest

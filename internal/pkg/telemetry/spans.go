package telemetry

// Span names used for instrumentation.
const (
	SpanBuildCollection = "murals.build_collection"
	SpanScrape          = "localwiki.scrape"
	SpanViewerLoad      = "viewer.load"
	SpanViewerExport    = "viewer.export"
)

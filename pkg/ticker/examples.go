package ticker

import "stock-ticker-be/pkg/reasoning"

// extractionExamples anchor the extractor: direct tickers, misspellings,
// non-English input, several companies, and names without a known symbol.
var extractionExamples = []reasoning.Example{
	{
		Input:  "random text",
		Output: extraction{Stocks: []extractedStock{}},
	},
	{
		Input:  "我想了解苹果公司的股票 AAPL 现在表现如何？",
		Output: extractionOf(stockOf("AAPL", "Apple Inc.", ConfidenceHigh)),
	},
	{
		Input:  "Thoughts on HSBC",
		Output: extractionOf(stockOf("HSBC", "HSBC", ConfidenceHigh)),
	},
	{
		Input:  "Microsft stock",
		Output: extractionOf(stockOf("MSFT", "Microsoft", ConfidenceHigh)),
	},
	{
		Input: "compare BABA and NVDA",
		Output: extractionOf(
			stockOf("BABA", "Alibaba", ConfidenceHigh),
			stockOf("NVDA", "NVIDIA", ConfidenceHigh),
		),
	},
	{
		Input:  "中国最大的电商公司股票值得投资吗？",
		Output: extractionOf(stockOf("BABA", "Alibaba", ConfidenceMedium)),
	},
	{
		Input:  "茅台股票",
		Output: extractionOf(stockOf("", "Moutai", ConfidenceLow)),
	},
	{
		Input:  "how is Canadian Utilities stock performing?",
		Output: extractionOf(stockOf("", "Canadian Utilities", ConfidenceLow)),
	},
}

func extractionOf(stocks ...extractedStock) extraction {
	return extraction{Stocks: stocks}
}

func stockOf(ticker, name string, confidence Confidence) extractedStock {
	s := extractedStock{Name: &name}
	if ticker != "" {
		s.Ticker = &ticker
	}
	c := string(confidence)
	s.Confidence = &c
	return s
}

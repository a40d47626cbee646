package llm

var fallbackTitles = []string{
	"Market Analysis Q4 2024",
	"Revenue Growth Strategy",
	"Customer Engagement Metrics",
	"Product Development Roadmap",
	"Team Performance Overview",
	"Annual Budget Forecast",
	"Digital Transformation",
	"Competitive Market Position",
	"Innovation and Research",
	"Sustainability Goals 2025",
}

var fallbackBullets = []string{
	"Increased revenue by 25% this quarter",
	"Improved customer satisfaction scores",
	"Launched three new product features",
	"Expanded market presence in Europe",
	"Reduced operational costs by 15%",
}

var fallbackHeaderPools = [][]string{
	{"Product", "Sales", "Revenue", "Growth"},
	{"Region", "Q1", "Q2", "Q3", "Q4"},
	{"Team", "Target", "Actual", "Status"},
	{"Category", "Units", "Price", "Total"},
}

var months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

package generator

import (
	"strings"

	"newscurator/internal/domain"
)

// ResearchFocus steers the research call for one category.
type ResearchFocus struct {
	Name        string
	Topics      []string
	Competitors []string
	Keywords    []string
}

// researchFocusBySlug holds curated focus areas for the seeded categories.
// Categories created later fall back to a focus derived from their own
// name and description.
var researchFocusBySlug = map[string]ResearchFocus{
	"credit-scoring": {
		Name: "Credit Scoring",
		Topics: []string{
			"AI/ML credit scoring models",
			"alternative data for credit decisions",
			"credit bureau innovations",
			"FICO score alternatives",
			"credit decisioning automation",
			"real-time credit assessments",
		},
		Competitors: []string{"Experian", "Equifax", "TransUnion", "FICO", "VantageScore"},
		Keywords:    []string{"credit score", "creditworthiness", "credit bureau", "credit risk model", "scoring algorithm"},
	},
	"fraud-detection": {
		Name: "Fraud Detection",
		Topics: []string{
			"AI fraud detection systems",
			"real-time transaction monitoring",
			"identity verification AI",
			"synthetic identity fraud",
			"payment fraud prevention",
			"behavioral biometrics",
		},
		Competitors: []string{"Featurespace", "Feedzai", "NICE Actimize", "SAS"},
		Keywords:    []string{"fraud detection", "anti-money laundering", "KYC", "identity verification", "financial crime"},
	},
	"income-employment": {
		Name: "Income & Employment",
		Topics: []string{
			"AI income verification",
			"employment verification automation",
			"cash flow analysis AI",
			"capacity to pay assessment",
			"open banking for affordability",
			"payroll data aggregation",
		},
		Competitors: []string{"Argyle", "Pinwheel", "Truework", "Plaid", "Yodlee"},
		Keywords:    []string{"income verification", "employment verification", "cash flow", "affordability", "capacity to pay"},
	},
	"regulatory-compliance": {
		Name: "Regulatory & Compliance",
		Topics: []string{
			"AI governance in finance",
			"fair lending compliance",
			"model explainability requirements",
			"CFPB AI regulations",
			"algorithmic bias audits",
			"AI transparency requirements",
		},
		Competitors: []string{"Compliance.ai", "Behavox", "Corlytics"},
		Keywords:    []string{"AI regulation", "fair lending", "explainability", "model governance", "compliance automation"},
	},
	"lending-automation": {
		Name: "Lending Automation",
		Topics: []string{
			"AI underwriting systems",
			"automated loan decisioning",
			"digital lending platforms",
			"loan origination automation",
			"mortgage AI innovations",
			"small business lending AI",
		},
		Competitors: []string{"Blend", "Upstart", "nCino", "Zest AI"},
		Keywords:    []string{"automated underwriting", "loan origination", "digital lending", "AI underwriter", "loan automation"},
	},
}

// focusFor returns the curated focus for a category, or a generic one built
// from the category row itself.
func focusFor(c domain.Category) ResearchFocus {
	if focus, ok := researchFocusBySlug[c.Slug]; ok {
		return focus
	}

	topic := c.Description
	if topic == "" {
		topic = "AI and machine learning developments in " + strings.ToLower(c.Name)
	}
	return ResearchFocus{
		Name:     c.Name,
		Topics:   []string{topic},
		Keywords: strings.Split(c.Slug, "-"),
	}
}

// ArticleType shapes the length and angle of a generated piece.
type ArticleType struct {
	Name        string
	Description string
	MinWords    int
	MaxWords    int
}

var articleTypes = []ArticleType{
	{"Trend Analysis", "Deep dive into emerging trends in the category", 800, 1200},
	{"Product/Service Launch", "Coverage of new products or services in the market", 600, 900},
	{"Market Insight", "Analysis of market dynamics, investments, or competitive landscape", 700, 1000},
	{"Regulatory Update", "Coverage of regulatory changes and their implications", 600, 900},
	{"Future Outlook", "Forward-looking analysis and predictions", 800, 1100},
}

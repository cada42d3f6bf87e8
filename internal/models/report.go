package models

// SiteReport is the completed intelligence document for a domain. It is owned
// by the backend and treated as an opaque payload by the orchestration core;
// the sections below exist so page handlers can serve typed JSON without
// re-decoding.
type SiteReport struct {
	Domain          string            `json:"domain,omitempty"`
	UpdatedAt       string            `json:"updatedAt,omitempty"`
	FreshnessTTLSec int               `json:"freshnessTtlSec,omitempty"`
	Visual          *VisualSection    `json:"visual,omitempty"`
	Meta            *MetaSection      `json:"meta,omitempty"`
	SEO             *SEOSection       `json:"seo,omitempty"`
	Files           *FilesSection     `json:"files,omitempty"`
	DNS             *DNSSection       `json:"dns,omitempty"`
	Ads             *AdsSection       `json:"ads,omitempty"`
	Publisher       *PublisherSection `json:"publisher,omitempty"`
	TrafficData     *TrafficSection   `json:"trafficData,omitempty"`
	Radar           *RadarSection     `json:"radar,omitempty"`
	Taxonomy        *TaxonomySection  `json:"taxonomy,omitempty"`
	AIAnalysis      *AISection        `json:"aiAnalysis,omitempty"`
	Score           *ScoreSection     `json:"score,omitempty"`
	ProviderHealth  []ProviderHealth  `json:"providerHealth,omitempty"`
}

// VisualSection carries screenshot and palette data
type VisualSection struct {
	ScreenshotURL  string   `json:"screenshotUrl,omitempty"`
	ScreenshotPath string   `json:"screenshotPath,omitempty"`
	DominantColor  string   `json:"dominantColor,omitempty"`
	Palette        []string `json:"palette,omitempty"`
	Storage        string   `json:"storage,omitempty"`
}

// MetaSection carries page metadata and detected tech stack
type MetaSection struct {
	Title             string   `json:"title,omitempty"`
	Description       string   `json:"description,omitempty"`
	TechStackDetected []string `json:"techStackDetected,omitempty"`
}

// SEOSection carries on-page structure counts and extracted contacts
type SEOSection struct {
	H1Count       int          `json:"h1Count,omitempty"`
	H2Count       int          `json:"h2Count,omitempty"`
	InternalLinks int          `json:"internalLinks,omitempty"`
	ExternalLinks int          `json:"externalLinks,omitempty"`
	ImagesCount   int          `json:"imagesCount,omitempty"`
	Contacts      *SEOContacts `json:"contacts,omitempty"`
}

// SEOContacts holds contact handles scraped from the page
type SEOContacts struct {
	Emails      []string `json:"emails,omitempty"`
	Phones      []string `json:"phones,omitempty"`
	SocialLinks []string `json:"socialLinks,omitempty"`
}

// FilesSection carries well-known file presence flags
type FilesSection struct {
	HasRobots  bool `json:"hasRobots,omitempty"`
	HasSitemap bool `json:"hasSitemap,omitempty"`
}

// DNSSection carries resolved record data
type DNSSection struct {
	Provider   string   `json:"provider,omitempty"`
	MXRecords  []string `json:"mxRecords,omitempty"`
	NSRecords  []string `json:"nsRecords,omitempty"`
	TXTRecords []string `json:"txtRecords,omitempty"`
}

// AdsSection carries advertiser transparency data
type AdsSection struct {
	IsAdvertiser        bool     `json:"isAdvertiser,omitempty"`
	AdvertiserIDs       []string `json:"advertiserIds,omitempty"`
	AdvertiserNames     []string `json:"advertiserNames,omitempty"`
	ResultCount         int      `json:"resultCount,omitempty"`
	TransparencySignals []string `json:"transparencySignals,omitempty"`
}

// PublisherSection carries monetization signals
type PublisherSection struct {
	HasAdsTxt           bool     `json:"hasAdsTxt,omitempty"`
	AdSystems           []string `json:"adSystems,omitempty"`
	MonetizationSignals []string `json:"monetizationSignals,omitempty"`
}

// TrafficSection carries estimated traffic metrics
type TrafficSection struct {
	MonthlyVisits    int            `json:"monthlyVisits,omitempty"`
	GlobalRank       *int           `json:"globalRank,omitempty"`
	CountryRank      *int           `json:"countryRank,omitempty"`
	BounceRate       *float64       `json:"bounceRate,omitempty"`
	AvgVisitDuration *float64       `json:"avgVisitDuration,omitempty"`
	PagesPerVisit    *float64       `json:"pagesPerVisit,omitempty"`
	TopCountry       string         `json:"topCountry,omitempty"`
	TopRegions       []RegionShare  `json:"topRegions,omitempty"`
	TopKeywords      []KeywordStat  `json:"topKeywords,omitempty"`
	TrafficSources   *SourceShares  `json:"trafficSources,omitempty"`
	DomainAgeYears   *float64       `json:"domainAgeYears,omitempty"`
}

// RegionShare is one country's share of traffic
type RegionShare struct {
	Country string  `json:"country"`
	Share   float64 `json:"share"`
}

// KeywordStat is one ranking keyword with volume and cost
type KeywordStat struct {
	Keyword string  `json:"keyword"`
	Volume  int     `json:"volume"`
	CPC     float64 `json:"cpc"`
}

// SourceShares breaks traffic down by acquisition channel
type SourceShares struct {
	Direct   float64 `json:"direct"`
	Search   float64 `json:"search"`
	Social   float64 `json:"social"`
	Referral float64 `json:"referral"`
	Mail     float64 `json:"mail"`
	Paid     float64 `json:"paid"`
}

// RadarSection carries rank-bucket data from the radar provider
type RadarSection struct {
	GlobalRank      *int     `json:"globalRank,omitempty"`
	RankBucket      string   `json:"rankBucket,omitempty"`
	SourceTimestamp string   `json:"sourceTimestamp,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	Queued          bool     `json:"queued,omitempty"`
}

// TaxonomySection carries IAB classification
type TaxonomySection struct {
	IABCategory    string   `json:"iabCategory,omitempty"`
	IABSubCategory string   `json:"iabSubCategory,omitempty"`
	Confidence     float64  `json:"confidence,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Source         string   `json:"source,omitempty"`
}

// AISection carries AI-generated classification, business and risk analysis
type AISection struct {
	Classification *AIClassification `json:"classification,omitempty"`
	Business       *AIBusiness       `json:"business,omitempty"`
	Risk           *AIRisk           `json:"risk,omitempty"`
}

// AIClassification is the model-assigned category
type AIClassification struct {
	Category    string   `json:"category,omitempty"`
	SubCategory string   `json:"subCategory,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// AIBusiness summarizes the site's business model
type AIBusiness struct {
	Summary        string `json:"summary,omitempty"`
	Model          string `json:"model,omitempty"`
	TargetAudience string `json:"targetAudience,omitempty"`
}

// AIRisk carries the trust/spam assessment
type AIRisk struct {
	Sentiment string `json:"sentiment,omitempty"`
	Score     int    `json:"score,omitempty"`
	IsSpam    bool   `json:"isSpam,omitempty"`
}

// ScoreSection is the aggregate site score with contributing signals
type ScoreSection struct {
	Value   int      `json:"value,omitempty"`
	Signals []string `json:"signals,omitempty"`
}

// ProviderHealth reports whether one backend provider succeeded
type ProviderHealth struct {
	Provider  string `json:"provider"`
	OK        bool   `json:"ok"`
	ErrorCode string `json:"errorCode,omitempty"`
}

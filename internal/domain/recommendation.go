package domain

type Strategy string

const (
	StrategyCollaborative Strategy = "collaborative"
	StrategyContentBased  Strategy = "content_based"
	StrategyPopular       Strategy = "popular"
	StrategySimilar       Strategy = "similar"
)

const (
	ReasonSimilarUsers    = "similar_users"
	ReasonSimilarProducts = "similar_products"
	ReasonPopular         = "popular"
	ReasonViewedTogether  = "viewed_together"
)

type Recommendation struct {
	ProductID    string
	Score        float64
	Strategy     Strategy
	CategoryID   string
	Reason       string
	Weight       float64
	BlendedScore float64
}

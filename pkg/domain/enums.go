package domain

// PartnerKind classifies how a partner earns commission. It is set when the
// partner profile is created and never changes afterwards.
type PartnerKind string

const (
	KindReferral PartnerKind = "referral"
	KindReseller PartnerKind = "reseller"
	KindService  PartnerKind = "service"
)

// Valid reports whether the kind is one of the known variants.
func (k PartnerKind) Valid() bool {
	switch k {
	case KindReferral, KindReseller, KindService:
		return true
	}
	return false
}

// Product is the Cartbridge product line a deal is sold on.
type Product string

const (
	ProductCheckout          Product = "checkout"
	ProductReturnsManagement Product = "returns_management"
	ProductEngagement        Product = "engagement"
	ProductAllProducts       Product = "all_products"
)

// Valid reports whether the product is one of the known variants.
func (p Product) Valid() bool {
	switch p {
	case ProductCheckout, ProductReturnsManagement, ProductEngagement, ProductAllProducts:
		return true
	}
	return false
}

// Vertical is the merchandise category of the referred brand.
type Vertical string

const (
	VerticalFashion     Vertical = "fashion"
	VerticalElectronics Vertical = "electronics"
	VerticalBeauty      Vertical = "beauty"
	VerticalHome        Vertical = "home"
	VerticalFood        Vertical = "food"
	VerticalOther       Vertical = "other"
)

// Valid reports whether the vertical is one of the known variants.
func (v Vertical) Valid() bool {
	switch v {
	case VerticalFashion, VerticalElectronics, VerticalBeauty, VerticalHome, VerticalFood, VerticalOther:
		return true
	}
	return false
}

// Stage is a position in the sales pipeline. Stages are ordered; Lost is a
// terminal absorbing state reachable from any non-terminal stage.
type Stage string

const (
	StageProspecting             Stage = "prospecting"
	StagePitch                   Stage = "pitch"
	StageObjection               Stage = "objection"
	StageBusinessAgreementShared Stage = "business_agreement_shared"
	StageSigned                  Stage = "signed"
	StageGoLive                  Stage = "go_live"
	StageLost                    Stage = "lost"
)

// StageOrder lists the forward pipeline stages in order. Lost sits outside
// the ordering.
var StageOrder = []Stage{
	StageProspecting,
	StagePitch,
	StageObjection,
	StageBusinessAgreementShared,
	StageSigned,
	StageGoLive,
}

// Valid reports whether the stage is one of the known variants.
func (s Stage) Valid() bool {
	if s == StageLost {
		return true
	}
	return s.Index() >= 0
}

// Index returns the stage's position in the forward ordering, or -1 for Lost
// and unknown values.
func (s Stage) Index() int {
	for i, stage := range StageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// Terminal reports whether no further progress is expected from the stage.
func (s Stage) Terminal() bool {
	return s == StageGoLive || s == StageLost
}

// NudgePriority ranks how urgently a nudge should surface to the partner.
type NudgePriority string

const (
	PriorityHigh   NudgePriority = "high"
	PriorityMedium NudgePriority = "medium"
	PriorityLow    NudgePriority = "low"
)

// Valid reports whether the priority is one of the known variants.
func (p NudgePriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

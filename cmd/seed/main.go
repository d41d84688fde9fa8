package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/cartbridge/partnerhub/config"
	"github.com/cartbridge/partnerhub/pkg/auth"
	"github.com/cartbridge/partnerhub/pkg/database"
	"github.com/cartbridge/partnerhub/pkg/deals"
	"github.com/cartbridge/partnerhub/pkg/documents"
	"github.com/cartbridge/partnerhub/pkg/domain"
	"github.com/cartbridge/partnerhub/pkg/models"
	"github.com/cartbridge/partnerhub/pkg/pipeline"
)

var brandSuffixes = []string{"Apparel", "Threads", "Living", "Organics", "Labs", "Studio", "Collective", "Essentials", "House", "Co"}

var products = []string{"checkout", "returns_management", "engagement", "all_products"}
var verticals = []string{"fashion", "electronics", "beauty", "home", "food", "other"}
var kinds = []domain.PartnerKind{domain.KindReferral, domain.KindReseller, domain.KindService}

// Seeds the database with demo partners and deals spread across the
// pipeline. Transitions run through the deal service so commission
// bookkeeping and nudges come out the same way they would in production.
func main() {
	cfg := config.Load()

	db, err := database.NewClient(cfg.DatabaseDSN())
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	gofakeit.Seed(42)
	rand.Seed(42)

	ctx := context.Background()

	machine := pipeline.New(cfg.PipelineStrictOrder)
	documentsService := documents.NewService(db.DB)
	dealsService := deals.NewService(db.DB, nil, machine, documentsService, nil)

	passwordHash, err := auth.HashPassword("partner-demo-123")
	if err != nil {
		log.Fatalf("❌ Failed to hash demo password: %v", err)
	}

	// Admin account
	admin := &domain.Partner{
		Name:         "Portal Admin",
		Email:        "admin@cartbridge.io",
		PasswordHash: passwordHash,
		Kind:         domain.KindReferral,
		Role:         domain.RoleAdmin,
	}
	if err := db.DB.Create(admin).Error; err != nil {
		log.Fatalf("❌ Failed to create admin: %v", err)
	}
	log.Printf("✅ Admin created: %s (password: partner-demo-123)", admin.Email)

	// Partners of every kind with a spread of deals each
	for i := 0; i < 12; i++ {
		kind := kinds[i%len(kinds)]
		partner := &domain.Partner{
			Name:         gofakeit.Name(),
			CompanyName:  gofakeit.Company(),
			Email:        fmt.Sprintf("partner%d@%s", i+1, gofakeit.DomainName()),
			Phone:        "",
			PasswordHash: passwordHash,
			Kind:         kind,
			Role:         domain.RolePartner,
		}
		if err := db.DB.Create(partner).Error; err != nil {
			log.Fatalf("❌ Failed to create partner: %v", err)
		}

		dealCount := 2 + rand.Intn(5)
		for d := 0; d < dealCount; d++ {
			req := models.CreateDealRequest{
				BrandName:  fmt.Sprintf("%s %s", gofakeit.LastName(), brandSuffixes[rand.Intn(len(brandSuffixes))]),
				MonthlyGMV: fmt.Sprintf("%d", 50000+rand.Intn(2000000)),
				Product:    products[rand.Intn(len(products))],
				Vertical:   verticals[rand.Intn(len(verticals))],
			}

			deal, err := dealsService.Create(ctx, partner.ID, partner.Email, req)
			if err != nil {
				log.Fatalf("❌ Failed to create deal: %v", err)
			}

			// Walk the deal forward a random number of stages; a few are lost
			if rand.Float64() < 0.15 {
				advanceTo(ctx, dealsService, partner, deal.ID, domain.StageLost)
				continue
			}
			targetIdx := rand.Intn(len(domain.StageOrder))
			for s := 1; s <= targetIdx; s++ {
				advanceTo(ctx, dealsService, partner, deal.ID, domain.StageOrder[s])
			}
		}

		log.Printf("✅ Partner seeded: %s (%s, %d deals)", partner.Email, kind, dealCount)
	}

	// Make a handful of deals look stale for the sweep demo
	cutoff := time.Now().UTC().AddDate(0, 0, -10)
	err = db.DB.Model(&domain.Deal{}).
		Where("id IN (?)", db.DB.Model(&domain.Deal{}).Select("id").Where("stage = ?", domain.StagePitch).Limit(5)).
		Update("stage_updated_at", cutoff).Error
	if err != nil {
		log.Printf("⚠️  Failed to backdate stale deals: %v", err)
	}

	log.Println("✅ Seeding complete")
}

func advanceTo(ctx context.Context, svc *deals.Service, partner *domain.Partner, dealID uint, stage domain.Stage) {
	req := models.StageTransitionRequest{Stage: string(stage)}
	if _, err := svc.TransitionStage(ctx, partner.ID, dealID, partner.Email, req); err != nil {
		log.Fatalf("❌ Failed to transition seeded deal %d to %s: %v", dealID, stage, err)
	}
}

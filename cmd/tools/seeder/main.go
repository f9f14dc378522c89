package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// seeder loads a demo shop: settings, customers, one invoice, a gold-savings
// scheme with enrollments maturing over the next few months and an open loan.
func main() {
	slug := flag.String("tenant", "default", "tenant slug to seed")
	name := flag.String("tenant-name", "Demo Jewellers", "tenant display name")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		log.Fatalf("load env: %v", err)
	}
	dbURL := k.String("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()

	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var tenantID string
		if err := tx.QueryRow(ctx, `
			INSERT INTO tenants (name, slug) VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, *name, *slug).Scan(&tenantID); err != nil {
			return err
		}
		log.Printf("seeding tenant %s (%s)", *slug, tenantID)

		if err := seedSettings(ctx, tx, tenantID); err != nil {
			return err
		}
		customers, err := seedCustomers(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		if err := seedInvoice(ctx, tx, tenantID, customers[0]); err != nil {
			return err
		}
		if err := seedSchemes(ctx, tx, tenantID, customers); err != nil {
			return err
		}
		return seedLoan(ctx, tx, tenantID, customers[1])
	})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Println("seeding completed")
}

func seedSettings(ctx context.Context, tx pgx.Tx, tenantID string) error {
	log.Println("seeding shop and loyalty settings")
	if _, err := tx.Exec(ctx, `
		INSERT INTO shop_settings (tenant_id, gold_rate, sgst_percent, cgst_percent)
		VALUES ($1, 6250.00, 1.5, 1.5)
		ON CONFLICT (tenant_id) DO UPDATE SET gold_rate = EXCLUDED.gold_rate, updated_at = now()`, tenantID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO loyalty_settings (tenant_id, redemption_conversion_rate, earning_type, flat_points_ratio, is_active)
		VALUES ($1, 1.0, 'flat', 100, true)
		ON CONFLICT (tenant_id) DO NOTHING`, tenantID)
	return err
}

func seedCustomers(ctx context.Context, tx pgx.Tx, tenantID string) ([]string, error) {
	log.Println("seeding customers")
	people := []struct {
		Name   string
		Phone  string
		Points int64
	}{
		{"Meera Iyer", "9876543210", 1200},
		{"Arjun Nair", "9845012345", 0},
		{"Kavya Reddy", "9900112233", 350},
		{"Rohan Das", "", 80},
	}
	ids := make([]string, 0, len(people))
	for _, p := range people {
		var id string
		var phone *string
		if p.Phone != "" {
			phone = &p.Phone
		}
		if err := tx.QueryRow(ctx, `
			INSERT INTO customers (tenant_id, name, phone, loyalty_points)
			VALUES ($1, $2, $3, $4)
			RETURNING id`, tenantID, p.Name, phone, p.Points).Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func seedInvoice(ctx context.Context, tx pgx.Tx, tenantID, customerID string) error {
	log.Println("seeding invoice")
	var invoiceID string
	if err := tx.QueryRow(ctx, `
		INSERT INTO invoices (tenant_id, customer_id, invoice_number, cash_discount, redeem_points, points_redeemed)
		VALUES ($1, $2, 'INV-DEMO-0001', 100, true, 200)
		ON CONFLICT (tenant_id, invoice_number) DO UPDATE SET cash_discount = EXCLUDED.cash_discount
		RETURNING id`, tenantID, customerID).Scan(&invoiceID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE tenant_id = $1 AND invoice_id = $2`, tenantID, invoiceID); err != nil {
		return err
	}
	items := []struct {
		Description string
		Weight      string
		Rate        *string
		Making      string
		Stone       string
	}{
		{"22K bangle", "12.450", nil, "450", "0"},
		{"Ruby pendant", "4.100", ptr("6100"), "600", "3500"},
	}
	for i, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO invoice_items (tenant_id, invoice_id, description, net_weight, rate, making_rate, stone_amount, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			tenantID, invoiceID, it.Description, it.Weight, it.Rate, it.Making, it.Stone, i); err != nil {
			return err
		}
	}
	return nil
}

func seedSchemes(ctx context.Context, tx pgx.Tx, tenantID string, customers []string) error {
	log.Println("seeding schemes and enrollments")
	schemes := []struct {
		Name string
		Type string
	}{
		{"Swarna Weight Plan", "WEIGHT_ACCUMULATION"},
		{"Swarna 11", "FLAT_AMOUNT"},
		{"Kalyan 12", "FIXED_DURATION"},
	}
	schemeIDs := make([]string, 0, len(schemes))
	for _, s := range schemes {
		var id string
		if err := tx.QueryRow(ctx, `
			INSERT INTO schemes (tenant_id, name, calculation_type, monthly_amount)
			VALUES ($1, $2, $3, 2000)
			RETURNING id`, tenantID, s.Name, s.Type).Scan(&id); err != nil {
			return err
		}
		schemeIDs = append(schemeIDs, id)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i, customerID := range customers {
		maturity := today.AddDate(0, 0, 3+i*20)
		paid := 22000 + i*1000
		weight := "0"
		if i%len(schemeIDs) == 0 {
			weight = "3.540"
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO scheme_enrollments (tenant_id, scheme_id, customer_id, start_date, maturity_date, total_paid, accumulated_weight)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			tenantID, schemeIDs[i%len(schemeIDs)], customerID, maturity.AddDate(0, -11, 0), maturity, paid, weight); err != nil {
			return err
		}
	}
	return nil
}

func seedLoan(ctx context.Context, tx pgx.Tx, tenantID, customerID string) error {
	log.Println("seeding gold loan")
	_, err := tx.Exec(ctx, `
		INSERT INTO loans (tenant_id, customer_id, principal, interest_rate, outstanding)
		VALUES ($1, $2, 50000, 12, 50000)`, tenantID, customerID)
	return err
}

func ptr(s string) *string { return &s }

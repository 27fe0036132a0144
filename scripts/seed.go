package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/twilightpharmacy/booking-backend/internal/adapters/search"
	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/infrastructure/clients/postgres"
	"github.com/twilightpharmacy/booking-backend/internal/infrastructure/clients/typesense"
	"github.com/twilightpharmacy/booking-backend/pkg/config"
)

var weekdayHours = entities.OpeningHours{
	"monday":    {Open: "09:00", Close: "18:00"},
	"tuesday":   {Open: "09:00", Close: "18:00"},
	"wednesday": {Open: "09:00", Close: "18:00"},
	"thursday":  {Open: "09:00", Close: "18:00"},
	"friday":    {Open: "09:00", Close: "18:00"},
	"saturday":  {Open: "09:00", Close: "17:00"},
	"sunday":    {Open: "10:00", Close: "16:00"},
}

type seedLocation struct {
	name    string
	code    string
	address string
	phone   string
}

type seedTreatment struct {
	name        string
	description string
	category    string
	price       float64
	duration    int
	isTravel    bool
	showSlots   bool
	seasonal    bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()
	db := pgClient.DB()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := db.ExecContext(ctx, `
			TRUNCATE TABLE
				bookings,
				location_blocks,
				pharmacist_schedules,
				pharmacist_treatments,
				pharmacist_locations,
				treatment_locations,
				pharmacists,
				treatments,
				locations
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to truncate tables: %v", err)
		}
	}

	now := time.Now().UTC()
	hoursJSON, err := json.Marshal(weekdayHours)
	if err != nil {
		log.Fatalf("Failed to marshal opening hours: %v", err)
	}

	locations := []seedLocation{
		{"Small Health", "SH", "309 Bolton rd, Small heath Birmingham B10 0AU", "0121 772 5955"},
		{"Kings Heath Branch", "KH", "128-130 High St, King's Heath, Birmingham, B14 7LG", "0121 444 1179"},
		{"Billesley", "BL", "698 Yardley Wood Rd, Billesley, Birmingham B13 0HY", "0121 443 4559"},
	}

	locationIDs := make([]string, 0, len(locations))
	for _, l := range locations {
		id := uuid.New().String()
		_, err := db.ExecContext(ctx, `
			INSERT INTO locations (id, name, code, address, phone, opening_hours, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
			id, l.name, l.code, l.address, l.phone, hoursJSON, now)
		if err != nil {
			log.Fatalf("Failed to insert location %s: %v", l.name, err)
		}
		locationIDs = append(locationIDs, id)
	}
	log.Printf("Seeded %d locations", len(locationIDs))

	treatments := []seedTreatment{
		{"Weight Loss", "Professional weight management consultation and treatment", "Weight Loss", 50, 30, false, true, false},
		{"Women's Health", "Comprehensive women's health consultations", "Women's Health", 45, 25, false, true, false},
		{"Digestion", "Digestive health assessment and treatment", "Digestion", 40, 20, false, true, false},
		{"Erectile Dysfunction", "Confidential consultation and treatment for ED", "Erectile Dysfunction", 55, 30, false, true, false},
		{"Facial Hair Removal", "Professional facial hair removal services", "Facial Hair Removal", 35, 45, false, true, false},
		{"Hair Loss", "Hair loss assessment and treatment options", "Hair Loss", 60, 30, false, true, false},
		{"Hay Fever and Allergy", "Allergy testing and hay fever treatment", "Hay Fever and Allergy", 30, 20, false, true, true},
		{"Ear Wax Removal", "Professional ear wax removal service", "Ear Wax Removal", 25, 15, false, true, false},
		{"HGV, PCV & Taxi Medicals", "Medical examinations for professional drivers", "HGV, PCV & Taxi Medicals", 80, 45, true, false, false},
	}

	treatmentIDs := make([]string, 0, len(treatments))
	for _, t := range treatments {
		id := uuid.New().String()
		var seasonStart, seasonEnd interface{}
		if t.seasonal {
			// Hay fever season: March through September of the current year
			seasonStart = time.Date(now.Year(), time.March, 1, 0, 0, 0, 0, time.UTC)
			seasonEnd = time.Date(now.Year(), time.September, 30, 0, 0, 0, 0, time.UTC)
		}
		_, err := db.ExecContext(ctx, `
			INSERT INTO treatments (id, name, description, category, price, duration_minutes,
				is_travel, is_nhs, show_slots, season_start, season_end, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8, $9, $10, true, $11, $11)`,
			id, t.name, t.description, t.category, t.price, t.duration, t.isTravel, t.showSlots, seasonStart, seasonEnd, now)
		if err != nil {
			log.Fatalf("Failed to insert treatment %s: %v", t.name, err)
		}
		treatmentIDs = append(treatmentIDs, id)
	}
	log.Printf("Seeded %d treatments", len(treatmentIDs))

	pharmacists := []struct {
		name  string
		email string
		phone string
	}{
		{"Usman Ali", "usman.ali@twilightpharmacy.com", "0121 555 0101"},
		{"Yusuf Ali", "yusuf.ali@twilightpharmacy.com", "0121 555 0102"},
		{"Hamza Ali", "hamza.ali@twilightpharmacy.com", "0121 555 0103"},
	}

	pharmacistIDs := make([]string, 0, len(pharmacists))
	for _, p := range pharmacists {
		id := uuid.New().String()
		_, err := db.ExecContext(ctx, `
			INSERT INTO pharmacists (id, name, email, phone, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, true, $5, $5)`,
			id, p.name, p.email, p.phone, now)
		if err != nil {
			log.Fatalf("Failed to insert pharmacist %s: %v", p.name, err)
		}
		pharmacistIDs = append(pharmacistIDs, id)
	}
	log.Printf("Seeded %d pharmacists", len(pharmacistIDs))

	// Every treatment at every location, every pharmacist everywhere and
	// able to perform everything, full-week 09:00-17:00 schedules.
	for _, tid := range treatmentIDs {
		for _, lid := range locationIDs {
			if _, err := db.ExecContext(ctx,
				`INSERT INTO treatment_locations (treatment_id, location_id) VALUES ($1, $2)`, tid, lid); err != nil {
				log.Fatalf("Failed to link treatment to location: %v", err)
			}
		}
	}
	for _, pid := range pharmacistIDs {
		for _, lid := range locationIDs {
			if _, err := db.ExecContext(ctx,
				`INSERT INTO pharmacist_locations (pharmacist_id, location_id) VALUES ($1, $2)`, pid, lid); err != nil {
				log.Fatalf("Failed to link pharmacist to location: %v", err)
			}
		}
		for _, tid := range treatmentIDs {
			if _, err := db.ExecContext(ctx,
				`INSERT INTO pharmacist_treatments (pharmacist_id, treatment_id) VALUES ($1, $2)`, pid, tid); err != nil {
				log.Fatalf("Failed to link pharmacist to treatment: %v", err)
			}
		}
		for day := 0; day <= 6; day++ {
			if _, err := db.ExecContext(ctx, `
				INSERT INTO pharmacist_schedules (id, pharmacist_id, day_of_week, start_time, end_time, is_active)
				VALUES ($1, $2, $3, '09:00', '17:00', true)`,
				uuid.New().String(), pid, day); err != nil {
				log.Fatalf("Failed to insert schedule: %v", err)
			}
		}
	}
	log.Println("Seeded join tables and schedules")

	// Push the catalogue into the search index when Typesense is reachable
	if tsClient, err := typesense.NewClient(&cfg.Typesense); err == nil {
		adapter := search.NewTypesenseAdapter(tsClient)
		if err := adapter.InitSchema(ctx); err != nil {
			log.Printf("Warning: failed to init search schema: %v", err)
		} else {
			rows, err := db.QueryContext(ctx, `SELECT id, name, description, category, price, is_active, created_at FROM treatments`)
			if err != nil {
				log.Printf("Warning: failed to read treatments for indexing: %v", err)
			} else {
				defer rows.Close()
				var toIndex []*entities.Treatment
				for rows.Next() {
					t := &entities.Treatment{}
					if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Category, &t.Price, &t.IsActive, &t.CreatedAt); err != nil {
						continue
					}
					toIndex = append(toIndex, t)
				}
				if err := adapter.Index(ctx, toIndex); err != nil {
					log.Printf("Warning: failed to index treatments: %v", err)
				} else {
					log.Printf("Indexed %d treatments", len(toIndex))
				}
			}
		}
	} else {
		log.Printf("Typesense unavailable, skipping search indexing: %v", err)
	}

	log.Println("Seeding complete")
}

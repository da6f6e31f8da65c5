// Skrip migrasi offline: mengisi bahasa yang kosong pada kandungan
// dwibahasa (projek dan artikel) menggunakan API terjemahan. Dijalankan
// secara manual, bukan sebahagian dari request path.
//
//	go run ./cmd/translate-backfill [-dry-run]
package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/amanahfoundation/charity-backend/config"
	"github.com/amanahfoundation/charity-backend/models"
	"github.com/amanahfoundation/charity-backend/services"
	"github.com/amanahfoundation/charity-backend/utils"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report missing translations without writing")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	utils.InitLogger()

	cfg := config.Load()
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	translator := services.NewTranslatorService(cfg.TranslateAPIURL, cfg.TranslateAPIKey)

	translated, skipped := 0, 0

	// Projek: tajuk dan keterangan
	var projects []models.Project
	if err := db.Find(&projects).Error; err != nil {
		utils.ErrorLogger.Fatalf("Failed to load projects: %v", err)
	}
	for i := range projects {
		p := &projects[i]
		changedTitle := backfill(translator, &p.Title, p.Slug+" title", *dryRun, &translated, &skipped)
		changedDesc := backfill(translator, &p.Description, p.Slug+" description", *dryRun, &translated, &skipped)
		if (changedTitle || changedDesc) && !*dryRun {
			if err := db.Save(p).Error; err != nil {
				utils.ErrorLogger.Printf("Failed to save project %s: %v", p.Slug, err)
			}
		}
	}

	// Artikel blog: tajuk dan isi
	var posts []models.Post
	if err := db.Find(&posts).Error; err != nil {
		utils.ErrorLogger.Fatalf("Failed to load posts: %v", err)
	}
	for i := range posts {
		p := &posts[i]
		changedTitle := backfill(translator, &p.Title, p.Slug+" title", *dryRun, &translated, &skipped)
		changedBody := backfill(translator, &p.Body, p.Slug+" body", *dryRun, &translated, &skipped)
		if (changedTitle || changedBody) && !*dryRun {
			if err := db.Save(p).Error; err != nil {
				utils.ErrorLogger.Printf("Failed to save post %s: %v", p.Slug, err)
			}
		}
	}

	utils.InfoLogger.Printf("Backfill done: %d fields translated, %d skipped", translated, skipped)
}

// backfill mengisi sisi bahasa yang kosong pada satu field. Baris yang
// kedua-dua sisinya kosong dilangkau (tidak sah, perlu diisi manual).
func backfill(translator *services.TranslatorService, text *models.LocalizedText, label string, dryRun bool, translated, skipped *int) bool {
	missing := text.Missing()
	if len(missing) == 0 {
		return false
	}

	sourceLang, sourceText, ok := text.Source()
	if !ok {
		utils.ErrorLogger.Printf("Skipping %s: both languages empty", label)
		*skipped++
		return false
	}

	changed := false
	for _, lang := range missing {
		if dryRun {
			utils.InfoLogger.Printf("[dry-run] %s: would translate %s -> %s", label, sourceLang, lang)
			*translated++
			continue
		}

		result, err := translator.Translate(sourceText, sourceLang, lang)
		if err != nil {
			utils.ErrorLogger.Printf("Failed to translate %s (%s -> %s): %v", label, sourceLang, lang, err)
			*skipped++
			continue
		}
		if text.Fill(lang, result) {
			utils.InfoLogger.Printf("%s: filled %s from %s", label, lang, sourceLang)
			*translated++
			changed = true
		}
	}
	return changed
}

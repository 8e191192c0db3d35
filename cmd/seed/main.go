package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/arhambuilds/storefront-backend/config"
	"github.com/arhambuilds/storefront-backend/internal/app/model"
	"github.com/arhambuilds/storefront-backend/internal/db"
)

// Imports a catalog spreadsheet into the products table. The compiled-in
// catalog covers normal deployments; this tool exists for bulk edits done in
// a sheet (price rounds, new drops) without a code change.
//
// Expected columns, in order:
//
//	id | slug | title | description | category | current_price |
//	original_price | stock_count | thumbnail_url | video_url | demo_url |
//	archive_key | badge | coming_soon
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	if err := db.SeedCatalog(products); err != nil {
		log.Fatal("Failed to import products:", err)
	}
	fmt.Printf("Imported %d products.\n", len(products))
}

func readProductsFromXLSX(filePath string) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheetName)
	}

	var products []model.Product
	for i, row := range rows[1:] { // skip header
		product, err := parseProductRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		products = append(products, product)
	}
	return products, nil
}

func parseProductRow(row []string) (model.Product, error) {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	id := cell(0)
	slug := cell(1)
	title := cell(2)
	if id == "" || slug == "" || title == "" {
		return model.Product{}, fmt.Errorf("id, slug and title are required")
	}

	currentPrice, err := strconv.ParseInt(cell(5), 10, 64)
	if err != nil {
		return model.Product{}, fmt.Errorf("invalid current_price %q", cell(5))
	}

	product := model.Product{
		ID:           id,
		Slug:         slug,
		Title:        title,
		Description:  cell(3),
		Category:     cell(4),
		CurrentPrice: currentPrice,
		ThumbnailURL: cell(8),
		VideoURL:     cell(9),
		DemoURL:      cell(10),
		ArchiveKey:   cell(11),
		Badge:        model.ProductBadge(cell(12)),
		ComingSoon:   strings.EqualFold(cell(13), "true"),
	}

	if v := cell(6); v != "" {
		originalPrice, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return model.Product{}, fmt.Errorf("invalid original_price %q", v)
		}
		if originalPrice < currentPrice {
			return model.Product{}, fmt.Errorf("original_price %d below current_price %d", originalPrice, currentPrice)
		}
		product.OriginalPrice = &originalPrice
	}

	if v := cell(7); v != "" {
		stockCount, err := strconv.Atoi(v)
		if err != nil || stockCount < 0 {
			return model.Product{}, fmt.Errorf("invalid stock_count %q", v)
		}
		product.StockCount = &stockCount
	}

	return product, nil
}

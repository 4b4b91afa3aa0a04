package main

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/luminabrand/storefront/internal/config"
	"github.com/luminabrand/storefront/internal/db"
)

type seedVariant struct {
	sku   string
	size  string
	color string
	price int64
	stock int
}

type seedProduct struct {
	name             string
	slug             string
	tagLine          string
	basePrice        int64
	isNew            bool
	isBestSeller     bool
	isLimitedEdition bool
	collections      []string
	tags             []string
	variants         []seedVariant
}

type seedCollection struct {
	slug        string
	name        string
	description string
}

type seedPromotion struct {
	code           string
	promoType      string
	value          int64
	minOrderAmount int64
}

var collections = []seedCollection{
	{"new-arrivals", "New Arrivals", "Fresh drops just in — designed for this season."},
	{"best-sellers", "Best Sellers", "Most-loved essentials our customers keep coming back for."},
	{"men", "Men", "Tailored pieces and everyday staples for him."},
	{"women", "Women", "Statement silhouettes and refined wardrobe foundations."},
	{"accessories", "Accessories", "Finish the look with bags, caps, and sunglasses."},
	{"limited-editions", "Limited Editions", "Small-batch experimental pieces in very limited runs."},
}

var products = []seedProduct{
	{
		name:         "Luxe Satin Slip Dress",
		slug:         "luxe-satin-slip-dress",
		tagLine:      "Bias-cut satin with a soft glow for night-out energy.",
		basePrice:    140,
		isNew:        true,
		isBestSeller: true,
		collections:  []string{"women", "new-arrivals", "best-sellers"},
		tags:         []string{"dress", "evening", "women"},
		variants: []seedVariant{
			{"DRS-SLIP-XS-ROSE", "XS", "Rose Glow", 140, 3},
			{"DRS-SLIP-S-ROSE", "S", "Rose Glow", 140, 6},
			{"DRS-SLIP-M-ONYX", "M", "Black Onyx", 145, 0},
			{"DRS-SLIP-L-ONYX", "L", "Black Onyx", 145, 2},
		},
	},
	{
		name:         "Shadow Tech Sneakers",
		slug:         "shadow-tech-sneakers",
		tagLine:      "Lightweight cushioning with a sculpted, futuristic sole.",
		basePrice:    185,
		isNew:        true,
		isBestSeller: true,
		collections:  []string{"men", "new-arrivals", "best-sellers"},
		tags:         []string{"sneakers", "men", "footwear"},
		variants: []seedVariant{
			{"SNK-SHD-41-OBS", "EU 41", "Obsidian", 185, 8},
			{"SNK-SHD-42-OBS", "EU 42", "Obsidian", 185, 4},
			{"SNK-SHD-43-ICE", "EU 43", "Ice Grey", 190, 1},
		},
	},
	{
		name:        "Prism Logo Hoodie",
		slug:        "prism-logo-hoodie",
		tagLine:     "Oversized fleece with embossed prism logo across the chest.",
		basePrice:   110,
		isNew:       true,
		collections: []string{"men", "new-arrivals"},
		tags:        []string{"hoodie", "sweatshirt", "men"},
		variants: []seedVariant{
			{"TOP-PRISM-S-STN", "S", "Stone", 110, 5},
			{"TOP-PRISM-M-STN", "M", "Stone", 110, 0},
			{"TOP-PRISM-L-INK", "L", "Ink Navy", 115, 2},
		},
	},
	{
		name:        "Luminous Sculpt Bodysuit",
		slug:        "luminous-sculpt-bodysuit",
		tagLine:     "Second-skin fit with subtle contour panels.",
		basePrice:   95,
		collections: []string{"women"},
		tags:        []string{"bodysuit", "women"},
		variants: []seedVariant{
			{"TOP-LUMI-XS-GPH", "XS", "Graphite", 95, 4},
			{"TOP-LUMI-S-GPH", "S", "Graphite", 95, 0},
			{"TOP-LUMI-M-IRS", "M", "Iris", 99, 6},
		},
	},
	{
		name:        "Halo Mini Crossbody",
		slug:        "halo-mini-crossbody",
		tagLine:     "Curved mini bag with magnetic flap and metallic hardware.",
		basePrice:   130,
		isNew:       true,
		collections: []string{"accessories", "new-arrivals"},
		tags:        []string{"bag", "crossbody", "accessories"},
		variants: []seedVariant{
			{"BAG-HALO-OS-CRM", "One Size", "Soft Cream", 130, 7},
			{"BAG-HALO-OS-INK", "One Size", "Ink Black", 130, 2},
		},
	},
	{
		name:         "Eclipse Frame Sunglasses",
		slug:         "eclipse-frame-sunglasses",
		tagLine:      "Sculpted acetate frames with soft gradient lenses.",
		basePrice:    85,
		isBestSeller: true,
		collections:  []string{"accessories", "best-sellers"},
		tags:         []string{"sunglasses", "accessories"},
		variants: []seedVariant{
			{"ACC-ECLP-OS-SMK", "One Size", "Smoke Fade", 85, 10},
			{"ACC-ECLP-OS-AMB", "One Size", "Amber Tint", 85, 0},
		},
	},
	{
		name:             "Chromatic Foil Bomber",
		slug:             "chromatic-foil-bomber",
		tagLine:          "Foil-finish shell with tonal rib trims and hidden zip.",
		basePrice:        210,
		isLimitedEdition: true,
		collections:      []string{"limited-editions", "men"},
		tags:             []string{"jacket", "outerwear", "men"},
		variants: []seedVariant{
			{"OUT-FOIL-M-GPH", "M", "Graphite Foil", 210, 1},
			{"OUT-FOIL-L-GPH", "L", "Graphite Foil", 210, 0},
		},
	},
	{
		name:             "Iridescent Sequin Blazer",
		slug:             "iridescent-sequin-blazer",
		tagLine:          "Sharp tailoring with glassy sequins that catch low light.",
		basePrice:        260,
		isBestSeller:     true,
		isLimitedEdition: true,
		collections:      []string{"limited-editions", "women", "best-sellers"},
		tags:             []string{"blazer", "outerwear", "women"},
		variants: []seedVariant{
			{"OUT-SEQ-S-AUR", "S", "Aurora", 260, 0},
			{"OUT-SEQ-M-AUR", "M", "Aurora", 260, 3},
			{"OUT-SEQ-L-ONYX", "L", "Midnight Onyx", 265, 2},
		},
	},
	{
		name:         "Everyday Essentials Tee",
		slug:         "everyday-essentials-tee",
		tagLine:      "Heavyweight cotton tee with clean neckline and dropped shoulders.",
		basePrice:    55,
		isBestSeller: true,
		collections:  []string{"men", "best-sellers"},
		tags:         []string{"tee", "top", "men"},
		variants: []seedVariant{
			{"TOP-TEE-S-WHT", "S", "Soft White", 55, 9},
			{"TOP-TEE-M-WHT", "M", "Soft White", 55, 0},
			{"TOP-TEE-L-COAL", "L", "Coal", 59, 4},
		},
	},
	{
		name:        "Cloudform Relaxed Jeans",
		slug:        "cloudform-relaxed-jeans",
		tagLine:     "Soft denim in a relaxed, puddled fit through the leg.",
		basePrice:   135,
		isNew:       true,
		collections: []string{"men", "new-arrivals"},
		tags:        []string{"jeans", "denim", "men"},
		variants: []seedVariant{
			{"BTM-CLOUD-30-ICE", "30", "Ice Wash", 135, 2},
			{"BTM-CLOUD-32-ICE", "32", "Ice Wash", 135, 5},
			{"BTM-CLOUD-34-INK", "34", "Deep Ink", 139, 0},
		},
	},
	{
		name:        "Skyline Ribbed Knit Dress",
		slug:        "skyline-ribbed-knit-dress",
		tagLine:     "Ribbed knit that hugs the body with a fluted hem.",
		basePrice:   150,
		collections: []string{"women"},
		tags:        []string{"dress", "knit", "women"},
		variants: []seedVariant{
			{"DRS-SKY-S-SND", "S", "Sandstone", 150, 4},
			{"DRS-SKY-M-SND", "M", "Sandstone", 150, 3},
			{"DRS-SKY-L-INK", "L", "Ink", 155, 0},
		},
	},
	{
		name:         "Vector Logo Cap",
		slug:         "vector-logo-cap",
		tagLine:      "Curved-brim cap with 3D embroidered logo.",
		basePrice:    45,
		isNew:        true,
		isBestSeller: true,
		collections:  []string{"accessories", "best-sellers", "new-arrivals"},
		tags:         []string{"cap", "hat", "accessories"},
		variants: []seedVariant{
			{"ACC-CAP-OS-BLK", "One Size", "Black", 45, 10},
			{"ACC-CAP-OS-STN", "One Size", "Stone", 45, 2},
			{"ACC-CAP-OS-COB", "One Size", "Cobalt", 45, 0},
		},
	},
}

var promotions = []seedPromotion{
	{"WELCOME10", "PERCENT", 10, 0},
	{"SPEND300_20", "PERCENT", 20, 300},
	{"TAKE50", "FIXED", 50, 350},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if err := db.ApplyMigrations(cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	ctx := context.Background()
	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	tx, err := pg.Pool.Begin(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if err := run(ctx, tx); err != nil {
		log.Fatal().Err(err).Msg("Seed failed")
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to commit seed transaction")
	}

	log.Info().Msg("Seed complete.")
}

func run(ctx context.Context, tx pgx.Tx) error {
	log.Info().Msg("Clearing existing data...")

	clearStatements := []string{
		`DELETE FROM order_items`,
		`DELETE FROM orders`,
		`DELETE FROM product_variants`,
		`DELETE FROM product_collections`,
		`DELETE FROM product_tags`,
		`DELETE FROM tags`,
		`DELETE FROM products`,
		`DELETE FROM collections`,
		`DELETE FROM promotions`,
	}
	for _, stmt := range clearStatements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	log.Info().Msg("Seeding collections...")
	collectionIDs := make(map[string]int64)
	for _, c := range collections {
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO collections (slug, name, description) VALUES ($1, $2, $3) RETURNING id`,
			c.slug, c.name, c.description,
		).Scan(&id)
		if err != nil {
			return err
		}
		collectionIDs[c.slug] = id
	}

	log.Info().Msg("Seeding tags...")
	tagIDs := make(map[string]int64)
	for _, p := range products {
		for _, tag := range p.tags {
			if _, ok := tagIDs[tag]; ok {
				continue
			}
			var id int64
			err := tx.QueryRow(ctx,
				`INSERT INTO tags (slug, name) VALUES ($1, $2) RETURNING id`,
				tag, tag,
			).Scan(&id)
			if err != nil {
				return err
			}
			tagIDs[tag] = id
		}
	}

	log.Info().Msg("Seeding products, variants and relations...")
	for _, p := range products {
		var productID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO products (name, slug, tag_line, base_price, currency,
				is_new, is_best_seller, is_limited_edition, on_sale)
			VALUES ($1, $2, $3, $4, 'USD', $5, $6, $7, FALSE)
			RETURNING id`,
			p.name, p.slug, p.tagLine, p.basePrice,
			p.isNew, p.isBestSeller, p.isLimitedEdition,
		).Scan(&productID)
		if err != nil {
			return err
		}

		for _, v := range p.variants {
			_, err := tx.Exec(ctx, `
				INSERT INTO product_variants (product_id, sku, size, color, price, stock)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				productID, v.sku, v.size, v.color, v.price, v.stock,
			)
			if err != nil {
				return err
			}
		}

		for _, slug := range p.collections {
			collectionID, ok := collectionIDs[slug]
			if !ok {
				continue
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO product_collections (product_id, collection_id) VALUES ($1, $2)`,
				productID, collectionID,
			)
			if err != nil {
				return err
			}
		}

		for _, tag := range p.tags {
			_, err := tx.Exec(ctx,
				`INSERT INTO product_tags (product_id, tag_id) VALUES ($1, $2)`,
				productID, tagIDs[tag],
			)
			if err != nil {
				return err
			}
		}
	}

	log.Info().Msg("Seeding promotions...")
	for _, promo := range promotions {
		_, err := tx.Exec(ctx, `
			INSERT INTO promotions (code, type, value, min_order_amount, is_active)
			VALUES ($1, $2, $3, $4, TRUE)`,
			promo.code, promo.promoType, promo.value, promo.minOrderAmount,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

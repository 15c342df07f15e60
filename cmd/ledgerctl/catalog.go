package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/postgres"
)

// catalogFile réplica local del catálogo y del directorio de ubicaciones que consulta el libro.
type catalogFile struct {
	Products []struct {
		ID         string  `json:"id"`
		SellerID   string  `json:"seller_id"`
		Name       string  `json:"name"`
		Category   string  `json:"category"`
		Conditions *struct {
			Code                   string  `json:"code"`
			TemperatureMin         float64 `json:"temperature_min"`
			TemperatureMax         float64 `json:"temperature_max"`
			HumidityMin            float64 `json:"humidity_min"`
			HumidityMax            float64 `json:"humidity_max"`
			DegradationCoefficient float64 `json:"degradation_coefficient"`
		} `json:"conditions"`
	} `json:"products"`
	Locations []struct {
		Type        string  `json:"type"`
		ID          string  `json:"id"`
		SellerID    string  `json:"seller_id"`
		Name        string  `json:"name"`
		Temperature float64 `json:"temperature"`
		Humidity    float64 `json:"humidity"`
	} `json:"locations"`
}

type productWriter interface {
	Upsert(ctx context.Context, p entity.Product) error
}

type locationWriter interface {
	Upsert(ctx context.Context, info entity.LocationInfo) error
}

func newCatalogCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Réplica local del catálogo de productos y ubicaciones",
	}

	var file string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Carga productos y ubicaciones desde un archivo JSON (upsert)",
		Long: `Formato:
  {"products":  [{"id":"p1","seller_id":"s1","name":"Leche","category":"lácteos",
                  "conditions":{"code":"COLD","temperature_min":2,"temperature_max":6,
                                "humidity_min":30,"humidity_max":70,"degradation_coefficient":1}}],
   "locations": [{"type":"WAREHOUSE","id":"bod-1","seller_id":"s1","name":"Bodega",
                  "temperature":4,"humidity":50}]}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			pool, err := root.openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			np, nl, err := importCatalog(cmd.Context(), f, postgres.NewProductRepository(pool), postgres.NewLocationRepository(pool))
			if err != nil {
				return err
			}
			root.log.Info().Int("products", np).Int("locations", nl).Msg("catálogo importado")
			return nil
		},
	}
	importCmd.Flags().StringVarP(&file, "file", "f", "", "archivo JSON (requerido)")
	_ = importCmd.MarkFlagRequired("file")

	cmd.AddCommand(importCmd)
	return cmd
}

func importCatalog(ctx context.Context, r io.Reader, products productWriter, locations locationWriter) (int, int, error) {
	var in catalogFile
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return 0, 0, fmt.Errorf("leer catálogo: %w", err)
	}

	for i, p := range in.Products {
		if p.ID == "" || p.SellerID == "" {
			return 0, 0, fmt.Errorf("producto %d: id y seller_id requeridos", i)
		}
		cond := entity.DefaultStorageConditions()
		if p.Conditions != nil {
			cond = entity.StorageConditions{
				Code:                   p.Conditions.Code,
				TemperatureMin:         p.Conditions.TemperatureMin,
				TemperatureMax:         p.Conditions.TemperatureMax,
				HumidityMin:            p.Conditions.HumidityMin,
				HumidityMax:            p.Conditions.HumidityMax,
				DegradationCoefficient: p.Conditions.DegradationCoefficient,
			}
		}
		if err := products.Upsert(ctx, entity.Product{ID: p.ID, SellerID: p.SellerID, Name: p.Name, Category: p.Category, Conditions: cond}); err != nil {
			return i, 0, fmt.Errorf("producto %s: %w", p.ID, err)
		}
	}

	for i, l := range in.Locations {
		loc, err := entity.ParseLocation(l.Type, l.ID)
		if err != nil {
			return len(in.Products), i, fmt.Errorf("ubicación %d: %w", i, err)
		}
		info := entity.LocationInfo{
			Location: loc,
			SellerID: l.SellerID,
			Name:     l.Name,
			Profile:  entity.StorageProfile{Temperature: l.Temperature, Humidity: l.Humidity},
		}
		if err := locations.Upsert(ctx, info); err != nil {
			return len(in.Products), i, fmt.Errorf("ubicación %s: %w", loc, err)
		}
	}
	return len(in.Products), len(in.Locations), nil
}

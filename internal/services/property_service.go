package services

import (
	"context"
	"fmt"

	"github.com/enaran74/defrag-tracker/internal/logger"
	"github.com/enaran74/defrag-tracker/internal/models"
	"github.com/enaran74/defrag-tracker/internal/region"
)

// PropertyService owns property ingestion and region classification.
type PropertyService interface {
	// Ingest upserts a property by code and resolves its region when it
	// doesn't have one yet. Classification failure leaves the state code
	// empty; it never fails the ingestion.
	Ingest(ctx context.Context, code, name, externalRef string) (*models.Property, error)

	// Get returns ErrPropertyNotFound when the code is unknown.
	Get(ctx context.Context, code string) (*models.Property, error)

	// Deactivate clears the active flag. Properties are never deleted.
	Deactivate(ctx context.Context, code string) error

	// ClassifyUnresolved sweeps properties without a state code and tries
	// to classify each one; failures are isolated per property. Returns
	// how many were resolved.
	ClassifyUnresolved(ctx context.Context) (int, error)
}

type propertyService struct {
	store Store
	log   *logger.Logger
}

// NewPropertyService creates a PropertyService.
func NewPropertyService(store Store, log *logger.Logger) PropertyService {
	return &propertyService{store: store, log: log}
}

func (s *propertyService) Ingest(ctx context.Context, code, name, externalRef string) (*models.Property, error) {
	repos := s.store.Repos()

	property, err := repos.Properties.Upsert(ctx, &models.Property{
		Code:        code,
		Name:        name,
		ExternalRef: externalRef,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ingest property: %w", err)
	}

	if property.StateCode == nil {
		if state, ok := region.Classify(region.Record{Code: code, Name: name}); ok {
			if err := repos.Properties.SetStateCode(ctx, code, state); err != nil {
				return nil, fmt.Errorf("failed to store state code: %w", err)
			}
			property.StateCode = &state
			s.log.Info("Property classified", map[string]interface{}{
				"property_code": code,
				"state_code":    state,
			})
		} else {
			s.log.Warn("Property region unresolved", map[string]interface{}{
				"property_code": code,
				"name":          name,
			})
		}
	}

	return property, nil
}

func (s *propertyService) Get(ctx context.Context, code string) (*models.Property, error) {
	property, err := s.store.Repos().Properties.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}
	return property, nil
}

func (s *propertyService) Deactivate(ctx context.Context, code string) error {
	property, err := s.store.Repos().Properties.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to load property: %w", err)
	}
	if property == nil {
		return ErrPropertyNotFound
	}

	if err := s.store.Repos().Properties.Deactivate(ctx, code); err != nil {
		return fmt.Errorf("failed to deactivate property: %w", err)
	}

	s.log.Info("Property deactivated", map[string]interface{}{
		"property_code": code,
	})
	return nil
}

func (s *propertyService) ClassifyUnresolved(ctx context.Context) (int, error) {
	repos := s.store.Repos()

	properties, err := repos.Properties.ListUnclassified(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list unclassified properties: %w", err)
	}

	resolved := 0
	for _, p := range properties {
		state, ok := region.Classify(region.Record{Code: p.Code, Name: p.Name})
		if !ok {
			continue
		}
		// One bad property must not abort the rest of the sweep.
		if err := repos.Properties.SetStateCode(ctx, p.Code, state); err != nil {
			s.log.Error("Failed to store classified state code", err, map[string]interface{}{
				"property_code": p.Code,
				"state_code":    state,
			})
			continue
		}
		resolved++
	}

	s.log.Info("Classification sweep finished", map[string]interface{}{
		"candidates": len(properties),
		"resolved":   resolved,
	})

	return resolved, nil
}

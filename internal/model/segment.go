package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Segment describes one behavioral cluster in business terms. The mapping
// from cluster id to segment is metadata attached after training, not part
// of the clustering math, so it can be replaced without retraining.
type Segment struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Profile     string `json:"profile"`
	Strategy    string `json:"strategy"`
}

// Catalog maps cluster ids to segment metadata.
type Catalog map[int]Segment

// DefaultCatalog returns the production five-segment catalog. The profiles
// reflect the centroid shapes observed on the Online Retail training set.
func DefaultCatalog() Catalog {
	return Catalog{
		0: {
			Name:        "Steady Regulars",
			Description: "The largest group. Moderate frequency and mid-range spend; the consistent base of the business.",
			Profile:     "recency: medium | frequency: medium-low | monetary: medium",
			Strategy:    "Focus on retention, encourage repeat purchases and look for upsell opportunities.",
		},
		1: {
			Name:        "Dormant / At Risk",
			Description: "Customers who have not purchased in a long time and spend little. High churn risk.",
			Profile:     "recency: high | frequency: low | monetary: low",
			Strategy:    "Re-engagement campaigns with personalized offers, satisfaction surveys or win-back discounts.",
		},
		2: {
			Name:        "Loyal High-Value",
			Description: "Recent, frequent buyers with significant total spend. Faithful and valuable customers.",
			Profile:     "recency: low | frequency: high | monetary: high",
			Strategy:    "Loyalty programs, priority support and exclusive offers to keep engagement high.",
		},
		3: {
			Name:        "High-Frequency Champions",
			Description: "A small but extremely active group ordering at very high frequency, possibly wholesalers.",
			Profile:     "recency: very low | frequency: very high | monetary: very high",
			Strategy:    "VIP recognition, early access to products and a direct feedback channel.",
		},
		4: {
			Name:        "Ultra VIP",
			Description: "The highest total spend in the customer base. Recent, frequent and exceptional revenue.",
			Profile:     "recency: very low | frequency: high | monetary: extremely high",
			Strategy:    "Dedicated account management, exclusive treatment and maximum personalization.",
		},
	}
}

// LoadCatalog reads a segment catalog override from a JSON file keyed by
// cluster id.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read segment catalog: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse segment catalog: %w", err)
	}
	return catalog, nil
}

// Lookup returns the segment for a cluster id, falling back to a generic
// placeholder for ids the catalog does not cover.
func (c Catalog) Lookup(id int) Segment {
	if seg, ok := c[id]; ok {
		return seg
	}
	return Segment{
		Name:        fmt.Sprintf("Cluster %d", id),
		Description: "No segment metadata defined for this cluster.",
		Strategy:    "Manual analysis required.",
	}
}

package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"alfredoptarigan/ats-resume-analyzer/internal/models"
)

// AnalysisIndex keeps job-description embeddings of stored analyses so that
// similar past analyses can be looked up.
type AnalysisIndex interface {
	InitCollection(ctx context.Context) error
	Index(ctx context.Context, analysis *models.Analysis) error
	Search(ctx context.Context, query string, limit int, owner models.OwnerScope) ([]uint, error)
	Remove(ctx context.Context, analysisID uint) error
}

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type qdrantIndex struct {
	client         *qdrant.Client
	embedder       Embedder
	collectionName string
	vectorSize     uint64
}

func NewQdrantIndex(urlStr, apiKey, collectionName string, embedder Embedder) (AnalysisIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantIndex{
		client:         client,
		embedder:       embedder,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004
	}, nil
}

func (q *qdrantIndex) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

func (q *qdrantIndex) Index(ctx context.Context, analysis *models.Analysis) error {
	embedding, err := q.embedder.GenerateEmbedding(ctx, analysis.JobDescription)
	if err != nil {
		return err
	}


	_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDNum(uint64(analysis.ID)),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(analysisPayload(analysis)),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// analysisPayload omits user_id for anonymous analyses; ownerFilter relies on that.
func analysisPayload(analysis *models.Analysis) map[string]any {
	payload := map[string]any{
		"analysis_id":     int64(analysis.ID),
		"analysis_type":   analysis.AnalysisType,
		"job_description": models.Truncate(analysis.JobDescription, models.JobDescriptionPreviewLen),
	}
	if analysis.UserID != nil {
		payload["user_id"] = int64(*analysis.UserID)
	}
	return payload
}

// Search returns analysis ids ordered by similarity to query.
func (q *qdrantIndex) Search(ctx context.Context, query string, limit int, owner models.OwnerScope) ([]uint, error) {
	embedding, err := q.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Filter:         ownerFilter(owner),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	ids := make([]uint, 0, len(points))
	for _, point := range points {
		if v, ok := point.Payload["analysis_id"]; ok {
			ids = append(ids, uint(v.GetIntegerValue()))
			continue
		}
		if num := point.GetId().GetNum(); num != 0 {
			ids = append(ids, uint(num))
		}
	}

	return ids, nil
}

// ownerFilter mirrors the store's owner scope. Anonymous points carry no user_id.
func ownerFilter(owner models.OwnerScope) *qdrant.Filter {
	if owner.IsAny() {
		return nil
	}
	if id, ok := owner.User(); ok {
		return &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatchInt("user_id", int64(id)),
			},
		}
	}
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewIsEmpty("user_id"),
		},
	}
}

func (q *qdrantIndex) Remove(ctx context.Context, analysisID uint) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchInt("analysis_id", int64(analysisID)),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete point: %w", err)
	}

	return nil
}

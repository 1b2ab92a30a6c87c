package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"athena-kb/internal/contextutil"
)

// defaultGRPCPort is used when the URL carries no port.
const defaultGRPCPort = 6334

// QdrantStore implements VectorStore using Qdrant.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore creates a new Qdrant vector store client.
// urlStr is the HTTP endpoint, e.g. "http://localhost:6333"; the client talks
// gRPC on the next port up.
func NewQdrantStore(urlStr string) (*QdrantStore, error) {
	host, port, err := grpcEndpoint(urlStr)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client: client,
	}, nil
}

// grpcEndpoint derives the gRPC host and port from a Qdrant HTTP URL.
func grpcEndpoint(urlStr string) (string, int, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := defaultGRPCPort
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err != nil {
			return "", 0, fmt.Errorf("invalid Qdrant port %q: %w", parsedURL.Port(), err)
		}
		port = httpPort + 1
	}

	return host, port, nil
}

// Close releases the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// Upsert inserts or updates points in the collection.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		qdrantPoint := &qdrant.PointStruct{
			Id:      qdrant.NewID(point.ID),
			Vectors: qdrant.NewVectors(point.Vec...),
		}
		if len(point.Meta) > 0 {
			qdrantPoint.Payload = qdrant.NewValueMap(point.Meta)
		}
		qdrantPoints = append(qdrantPoints, qdrantPoint)
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         qdrantPoints,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.DebugContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// Search performs a similarity search. Filters become exact-match conditions
// on payload fields and must hold string or integer values.
func (s *QdrantStore) Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	qdrantFilter, err := buildFilter(filters)
	if err != nil {
		return nil, err
	}

	limit := uint64(k)
	queryReq := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         qdrantFilter,
	}

	scoredPoints, err := s.client.Query(ctx, queryReq)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]SearchResult, 0, len(scoredPoints))
	for _, result := range scoredPoints {
		pointID := ""
		if result.Id != nil {
			pointID = result.Id.GetUuid()
		}
		results = append(results, SearchResult{
			PointID: pointID,
			Score:   result.Score,
			Meta:    convertPayloadToMap(result.Payload),
		})
	}

	logger.DebugContext(ctx, "search completed", "collection", collection, "k", k, "results", len(results))
	return results, nil
}

// buildFilter turns exact-match filters into a Qdrant filter, or nil when empty.
func buildFilter(filters map[string]any) (*qdrant.Filter, error) {
	if len(filters) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	must := make([]*qdrant.Condition, 0, len(keys))
	for _, key := range keys {
		switch v := filters[key].(type) {
		case string:
			must = append(must, qdrant.NewMatch(key, v))
		case int:
			must = append(must, qdrant.NewMatchInt(key, int64(v)))
		case int64:
			must = append(must, qdrant.NewMatchInt(key, v))
		default:
			return nil, fmt.Errorf("unsupported filter value for %q: %T", key, v)
		}
	}

	return &qdrant.Filter{Must: must}, nil
}

// Delete removes points by their IDs.
func (s *QdrantStore) Delete(ctx context.Context, collection string, ids []string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(ids) == 0 {
		return nil
	}

	qdrantIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		qdrantIDs = append(qdrantIDs, qdrant.NewID(id))
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points:         qdrant.NewPointsSelector(qdrantIDs...),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete points", "collection", collection, "count", len(ids), "error", err)
		return fmt.Errorf("failed to delete points: %w", err)
	}

	logger.DebugContext(ctx, "deleted points", "collection", collection, "count", len(ids))
	return nil
}

// EnsureCollection creates collection with cosine distance if it is missing,
// otherwise checks that its vector size matches.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", collection, "vector_size", vectorSize)
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		return nil
	}

	info, err := s.GetCollectionInfo(ctx, collection)
	if err != nil {
		return err
	}
	if info.VectorSize == 0 {
		return fmt.Errorf("could not determine collection vector size")
	}
	if info.VectorSize != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, info.VectorSize)
	}

	logger.InfoContext(ctx, "collection validated", "collection", collection, "vector_size", vectorSize)
	return nil
}

// CollectionExists reports whether collection exists.
func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// CollectionInfo contains information about a Qdrant collection.
type CollectionInfo struct {
	VectorSize  int    `json:"vector_size"`
	PointsCount int    `json:"points_count"`
	Status      string `json:"status"`
}

// GetCollectionInfo returns the vector size, point count and status of collection.
func (s *QdrantStore) GetCollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error) {
	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection info: %w", err)
	}

	var vectorSize int
	if config := info.Config; config != nil && config.Params != nil {
		if vectorsConfig := config.Params.GetVectorsConfig(); vectorsConfig != nil {
			if params := vectorsConfig.GetParams(); params != nil {
				vectorSize = int(params.Size)
			}
		}
	}

	var pointsCount int
	if info.PointsCount != nil {
		pointsCount = int(*info.PointsCount)
	}

	status := "unknown"
	if info.Status != 0 {
		status = info.Status.String()
	}

	return &CollectionInfo{
		VectorSize:  vectorSize,
		PointsCount: pointsCount,
		Status:      status,
	}, nil
}

// convertPayloadToMap converts a Qdrant payload to plain Go values.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}

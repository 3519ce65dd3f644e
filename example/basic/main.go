package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/crag"
	"github.com/siherrmann/crag/helper"
	"github.com/siherrmann/crag/model"
)

const sampleContent = `Corrective retrieval augmented generation checks retrieved documents before answering.
A quality analyzer scores how well the local chunks answer the question.
When local evidence is thin or the question asks for recent facts, a web search adds fresh context.
The local and web evidence are fused into one context with the local documents first.
PostgreSQL with pgvector stores the chunk embeddings and finds the nearest chunks for a query.`

func main() {
	// Start a test PostgreSQL container with pgvector
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	// Keys and capabilities come from the environment, an optional .env file is loaded first
	if err := helper.LoadEnvFile(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}
	config, err := model.NewConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.QualityStrategy = model.QualityStrategyHeuristic

	c, err := crag.New(dbConfig, config)
	if err != nil {
		log.Fatalf("Failed to create crag: %v", err)
	}
	defer c.Close()

	// Sentence chunker + local all-MiniLM-L6-v2 embeddings
	if err := c.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	ctx := context.Background()
	doc := &model.Document{
		Title:    "Corrective RAG",
		Source:   "basic_example",
		Content:  sampleContent,
		Metadata: model.Metadata{"topic": "retrieval"},
	}

	fmt.Println("Ingesting document...")
	numChunks, err := c.IngestDocument(ctx, doc)
	if err != nil {
		log.Fatalf("Failed to ingest document: %v", err)
	}
	fmt.Printf("Document inserted with ID: %s\n", doc.RID)
	fmt.Printf("Inserted %d chunks\n", numChunks)

	queryText := "What happens when local evidence is thin?"
	fmt.Printf("\nQuerying: %s\n", queryText)

	result, err := c.Query(ctx, queryText, config.QueryConfig())
	if err != nil {
		log.Fatalf("Failed to query: %v", err)
	}

	fmt.Printf("\nVerdict: score %.1f, sufficient %t, web search %t (%s)\n",
		result.Verdict.RelevanceScore, result.Verdict.IsSufficient, result.Verdict.RequiresWebSearch, result.Verdict.Reasoning)
	fmt.Printf("\nFused context:\n%s\n", result.Context.Combined)

	fmt.Println("\nBasic example completed successfully!")
}

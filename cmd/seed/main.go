package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"memberportal/internal/model"
	"memberportal/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Seeds a handful of demo submissions so the admin dashboard has data.
func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "memberportal"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	repo := repository.NewSubmissionRepo(client.Database(dbName))

	subs := []*model.Submission{
		{
			SurveyID: "ai-adoption",
			Answers: model.AnswerMap{
				"uses_ai":     model.TextAnswer("yes"),
				"ai_tools":    model.Selection("chat assistants", "code generation"),
				"ai_benefits": model.Selection("faster drafting"),
			},
			Email:       "demo1@example.com",
			SubmittedAt: time.Now().Add(-48 * time.Hour),
		},
		{
			SurveyID: "ai-adoption",
			Answers: model.AnswerMap{
				"uses_ai": model.TextAnswer("no"),
			},
			Email:       "demo2@example.com",
			SubmittedAt: time.Now().Add(-24 * time.Hour),
		},
		{
			SurveyID: "member-feedback",
			Answers: model.AnswerMap{
				"satisfaction": model.TextAnswer("4"),
				"comments":     model.TextAnswer("The portal is easy to use."),
			},
			SubmittedAt: time.Now().Add(-2 * time.Hour),
		},
	}

	for _, sub := range subs {
		id, err := repo.Create(ctx, sub)
		if err != nil {
			log.Fatalf("Failed to insert submission: %v", err)
		}
		fmt.Printf("Inserted submission %s for survey %s\n", id, sub.SurveyID)
	}

	fmt.Println("Seed complete")
}

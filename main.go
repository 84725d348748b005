package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/asaidimu/go-datagrid/core/catalog"
	"github.com/asaidimu/go-datagrid/core/entity"
	"github.com/asaidimu/go-datagrid/core/grid"
	"github.com/asaidimu/go-datagrid/sqlite"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const dbFileName = "users.db"

func main() {
	// Start fresh: remove the database file if it already exists.
	if err := os.Remove(dbFileName); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing database file %s: %v", dbFileName, err)
	}

	db, err := sql.Open("sqlite3", dbFileName)
	if err != nil {
		log.Fatalf("Failed to open database connection: %v", err)
	}
	defer func() {
		if cErr := db.Close(); cErr != nil {
			log.Printf("Error closing database connection: %v", cErr)
		}
	}()

	if _, err := db.Exec(`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		age INTEGER,
		is_active INTEGER NOT NULL DEFAULT 1
	)`); err != nil {
		log.Fatalf("Failed to create users table: %v", err)
	}
	fmt.Println("Created 'users' table.")

	// The catalog is the whitelist: only these fields may be filtered
	// or sorted on, whatever the client sends.
	cat := catalog.New(map[string]catalog.Column{
		"id":       {DBName: "id", Type: catalog.ColumnTypeInteger},
		"name":     {DBName: "full_name", Type: catalog.ColumnTypeText, Required: true},
		"email":    {DBName: "email", Type: catalog.ColumnTypeText, Required: true},
		"age":      {DBName: "age", Type: catalog.ColumnTypeInteger},
		"isActive": {DBName: "is_active", Type: catalog.ColumnTypeBoolean},
	})

	executor := sqlite.NewExecutor(db, cat, nil)

	// Seed a few rows through the entity lifecycle.
	seed := []map[string]any{
		{"name": "Alice Smith", "email": "alice@example.com", "age": 30, "isActive": true},
		{"name": "Bob Jones", "email": "bob@example.com", "age": 27, "isActive": true},
		{"name": "Carol White", "email": "carol@example.com", "age": 41, "isActive": false},
	}
	for _, values := range seed {
		user, err := entity.New("users", "id", cat, nil)
		if err != nil {
			log.Fatalf("Failed to create entity: %v", err)
		}
		for field, value := range values {
			if err := user.Set(field, value); err != nil {
				log.Fatalf("Failed to set field %q: %v", field, err)
			}
		}
		if err := user.Save(context.Background(), executor); err != nil {
			log.Fatalf("Failed to save user: %v", err)
		}
	}
	fmt.Println("Seeded sample users.")

	g, err := grid.New(grid.Config{
		Catalog:          cat,
		BaseSelect:       "SELECT id, full_name, email, age, is_active FROM users",
		DefaultSortField: "id",
		PagingStyle:      grid.PagingLimitOffset,
	})
	if err != nil {
		log.Fatalf("Failed to create grid: %v", err)
	}

	g.Subscribe(grid.QueryBuildSuccess, func(ctx context.Context, event grid.Event) error {
		fmt.Printf("Built query: %s %v\n", event.SQL, event.Params)
		return nil
	})

	// Simulate an untrusted grid request: active users whose name
	// contains "o" or ends with "Smith", sorted by age, first page.
	// Note the "ghost" group, which the catalog silently drops.
	values := url.Values{}
	values.Set("filters", `[
		{"field":"isActive","filters":[{"kind":"EQUAL","value":"1","join":"AND"}]},
		{"field":"name","filters":[
			{"kind":"CONTAINS","value":"o","join":"AND"},
			{"kind":"ENDS_WITH","value":"Smith","join":"OR"}
		]},
		{"field":"ghost","filters":[{"kind":"EQUAL","value":"x","join":"AND"}]}
	]`)
	values.Set("sortField", "age")
	values.Set("sortOrder", "asc")
	values.Set("pageSize", "10")
	values.Set("pageNumber", "0")

	req, err := http.NewRequest(http.MethodGet, "/users?"+values.Encode(), nil)
	if err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}
	opts, err := grid.DecodeRequest(req)
	if err != nil {
		log.Fatalf("Failed to decode request: %v", err)
	}

	rows, err := g.Execute(context.Background(), opts, executor)
	if err != nil {
		log.Fatalf("Failed to execute grid query: %v", err)
	}

	fmt.Println("----------------------------------------------------------------")
	fmt.Printf("%-5s %-20s %-25s %-5s %-8s\n", "ID", "Name", "Email", "Age", "Active")
	fmt.Println("----------------------------------------------------------------")
	for _, row := range rows {
		fmt.Printf("%-5d %-20s %-25s %-5d %-8t\n",
			row["id"].(int64),
			row["full_name"].(string),
			row["email"].(string),
			row["age"].(int64),
			row["is_active"].(bool))
	}
	fmt.Println("----------------------------------------------------------------")
	fmt.Printf("\nDatabase written to %s; inspect it with the sqlite3 CLI.\n", dbFileName)
}

// Command autoserve-index manages the datasets and the precomputed
// assignment index from the command line, without going through the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"autoserve/backend/internal/adapters/datasets"
	"autoserve/backend/internal/adapters/indexfile"
	"autoserve/backend/internal/adapters/indexredis"
	"autoserve/backend/internal/adapters/persistence"
	"autoserve/backend/internal/adapters/telemetry"
	"autoserve/backend/internal/assignment"
	"autoserve/backend/internal/domain"
	"autoserve/backend/internal/logger"
	"autoserve/backend/internal/ports"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: autoserve-index <command> [flags]

commands:
  seed                      load the built-in demo dataset into the data file
  import                    load customers/centers from CSV or XLSX files
  build                     build the index from the datasets and persist it
  show [customer-id]        print the persisted index, or one customer's entry
  export -out FILE          write the index as an XLSX audit workbook`)
	os.Exit(2)
}

func main() {
	_ = godotenv.Load()
	logger.Setup()

	if len(os.Args) < 2 {
		usage()
	}

	ctx := context.Background()
	var err error
	switch os.Args[1] {
	case "seed":
		err = runSeed(ctx)
	case "import":
		err = runImport(ctx, os.Args[2:])
	case "build":
		err = runBuild(ctx)
	case "show":
		err = runShow(ctx, os.Args[2:])
	case "export":
		err = runExport(ctx, os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "autoserve-index %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func openRepository() (*persistence.FileRepository, error) {
	return persistence.NewFileRepository(strings.TrimSpace(os.Getenv("AUTOSERVE_DATA_FILE")))
}

func openIndexBlob(ctx context.Context) (ports.IndexBlob, error) {
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("AUTOSERVE_INDEX_BACKEND")))
	if backend == "" || backend == "file" {
		return indexfile.New(strings.TrimSpace(os.Getenv("AUTOSERVE_INDEX_FILE"))), nil
	}
	if backend != "redis" {
		return nil, fmt.Errorf("unknown index backend %q (want file or redis)", backend)
	}
	client, err := indexredis.OpenFromEnv(ctx)
	if err != nil {
		return nil, err
	}
	return indexredis.New(client, ""), nil
}

func topK() int {
	raw := strings.TrimSpace(os.Getenv("AUTOSERVE_TOPK"))
	if raw == "" {
		return domain.DefaultTopK
	}
	var k int
	if _, err := fmt.Sscanf(raw, "%d", &k); err != nil || k < 1 {
		return domain.DefaultTopK
	}
	return k
}

func runSeed(ctx context.Context) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	if err := datasets.Seed(ctx, repo); err != nil {
		return err
	}
	fmt.Println("seeded demo customers, service centers and technicians")
	return nil
}

func runImport(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("import", flag.ExitOnError)
	customersPath := flags.String("customers", "", "customers CSV or XLSX file")
	centersPath := flags.String("centers", "", "service centers CSV or XLSX file")
	sheet := flags.String("sheet", "Sheet1", "worksheet name for XLSX input")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *customersPath == "" && *centersPath == "" {
		return fmt.Errorf("nothing to import: pass -customers and/or -centers")
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}

	if *customersPath != "" {
		customers, err := loadCustomers(*customersPath, *sheet)
		if err != nil {
			return err
		}
		for _, customer := range customers {
			if _, err := repo.UpsertCustomer(ctx, customer); err != nil {
				return fmt.Errorf("import customer %s: %w", customer.ID, err)
			}
		}
		fmt.Printf("imported %d customers\n", len(customers))
	}

	if *centersPath != "" {
		centers, err := loadServiceCenters(*centersPath, *sheet)
		if err != nil {
			return err
		}
		for _, center := range centers {
			if _, err := repo.UpsertServiceCenter(ctx, center); err != nil {
				return fmt.Errorf("import service center %s: %w", center.ID, err)
			}
		}
		fmt.Printf("imported %d service centers\n", len(centers))
	}
	return nil
}

func loadCustomers(path, sheet string) ([]domain.Customer, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return datasets.LoadCustomersXLSX(path, sheet)
	}
	return datasets.LoadCustomersCSV(path)
}

func loadServiceCenters(path, sheet string) ([]domain.ServiceCenter, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return datasets.LoadServiceCentersXLSX(path, sheet)
	}
	return datasets.LoadServiceCentersCSV(path)
}

func runBuild(ctx context.Context) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	blob, err := openIndexBlob(ctx)
	if err != nil {
		return err
	}
	store, err := assignment.NewStore(repo, blob, telemetry.Noop{}, topK())
	if err != nil {
		return err
	}

	index, err := store.Rebuild(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("built index: k=%d, %d customers indexed\n", index.K, len(index.Entries))
	return nil
}

func runShow(ctx context.Context, args []string) error {
	blob, err := openIndexBlob(ctx)
	if err != nil {
		return err
	}
	payload, err := blob.Load(ctx)
	if err != nil {
		return fmt.Errorf("no persisted index: %w", err)
	}
	index, err := assignment.DecodeIndex(payload)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		entry, ok := index.EntryFor(args[0])
		if !ok {
			return fmt.Errorf("customer %s not in index", args[0])
		}
		fmt.Printf("%s: %s\n", args[0], strings.Join(entry, ", "))
		return nil
	}

	fmt.Printf("k=%d, %d customers\n", index.K, len(index.Entries))
	for customerID, entry := range index.Entries {
		fmt.Printf("%s: %s\n", customerID, strings.Join(entry, ", "))
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("export", flag.ExitOnError)
	out := flags.String("out", "autoserve_index.xlsx", "output XLSX path")
	if err := flags.Parse(args); err != nil {
		return err
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}
	blob, err := openIndexBlob(ctx)
	if err != nil {
		return err
	}
	payload, err := blob.Load(ctx)
	if err != nil {
		return fmt.Errorf("no persisted index: %w", err)
	}
	index, err := assignment.DecodeIndex(payload)
	if err != nil {
		return err
	}

	customers, err := repo.ListCustomers(ctx)
	if err != nil {
		return err
	}
	centers, err := repo.ListServiceCenters(ctx)
	if err != nil {
		return err
	}
	if err := datasets.ExportIndexXLSX(*out, index, customers, centers); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", *out)
	return nil
}

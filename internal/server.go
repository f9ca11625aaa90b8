package internal

import (
	"context"
	"database/sql"
	"embed"
	"log"
	"net/http"
	"os"
	"time"

	"scom-asset-api/internal/auth"
	"scom-asset-api/internal/config"
	"scom-asset-api/internal/docstore"
	"scom-asset-api/internal/handlers"
	"scom-asset-api/internal/pdf"
	"scom-asset-api/internal/rbac"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed openapi
var openapiFS embed.FS

type Server struct {
	DB         *sql.DB
	Pool       *pgxpool.Pool
	Router     *chi.Mux
	JWTManager *auth.JWTManager
	Metrics    *Metrics
	Docs       *docstore.Store
	PDF        *pdf.Renderer
}

func NewServer(dsn string, cfg *config.Config) *Server {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal("Failed to open database connection:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Database ping failed:", err)
	}

	// Also create a pgxpool for the importer
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatal("Failed to create pgxpool:", err)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)
	if err := jwtManager.ValidateConfig(); err != nil {
		log.Fatal("JWT configuration validation failed:", err)
	}

	docs, err := docstore.New(cfg.UploadDir)
	if err != nil {
		log.Fatal("Failed to initialize document store:", err)
	}

	s := &Server{
		DB:         db,
		Pool:       pool,
		Router:     chi.NewRouter(),
		JWTManager: jwtManager,
		Metrics:    NewMetrics(),
		Docs:       docs,
		PDF:        pdf.NewRenderer(),
	}

	// Mount public routes FIRST (no middleware)
	s.Router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	s.Router.Get("/dbping", func(w http.ResponseWriter, r *http.Request) {
		if err := s.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "db: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		if _, err := w.Write([]byte("db: ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	// Public auth routes (no JWT required)
	s.Router.Post("/auth/login", s.loginUser)
	s.mountDocs(s.Router)

	if os.Getenv("ENABLE_METRICS") == "true" {
		s.Router.Use(s.Metrics.Middleware())
		s.Router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}

	s.Router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(s.JWTManager))
		s.mountProtectedRoutes(r)
	})

	return s
}

// Close properly shuts down the server and cleans up resources
func (s *Server) Close(ctx context.Context) error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// mountDocs serves the OpenAPI spec
func (s *Server) mountDocs(mux *chi.Mux) {
	if os.Getenv("ENABLE_SWAGGER") != "true" {
		return
	}

	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		data, err := openapiFS.ReadFile("openapi/openapi.yaml")
		if err != nil {
			http.Error(w, "Failed to read OpenAPI spec", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/x-yaml")
		if _, err := w.Write(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// withRoles wraps a handler in the role-gating middleware.
func withRoles(h http.HandlerFunc, roles ...rbac.Role) http.HandlerFunc {
	return auth.MustRole(roles...)(h).(http.HandlerFunc)
}

// mountProtectedRoutes mounts all routes that require authentication
func (s *Server) mountProtectedRoutes(r chi.Router) {
	manage := []rbac.Role{rbac.ITAdmin, rbac.SupplyChainManager}

	// Assets - SCOM ID generated on create
	r.Get("/assets", s.listAssets)
	r.Get("/assets/{id}", s.getAsset)
	r.Post("/assets", withRoles(s.createAsset, manage...))
	r.Put("/assets/{id}", withRoles(s.updateAsset, manage...))
	r.Delete("/assets/{id}", withRoles(s.deleteAsset, rbac.ITAdmin))

	// Asset photos - max 3 per asset, first becomes profile
	r.Get("/assets/{id}/photos", s.listPhotos)
	r.Post("/assets/{id}/photos", withRoles(s.uploadPhoto, manage...))
	r.Get("/assets/{id}/photos/{photoID}", s.getPhoto)
	r.Delete("/assets/{id}/photos/{photoID}", withRoles(s.deletePhoto, manage...))

	// Master data
	r.Get("/legal-entities", s.listLegalEntities)
	r.Post("/legal-entities", withRoles(s.createLegalEntity, manage...))
	r.Get("/legal-entities/{id}", s.getLegalEntity)
	r.Put("/legal-entities/{id}", withRoles(s.updateLegalEntity, manage...))
	r.Delete("/legal-entities/{id}", withRoles(s.deleteLegalEntity, rbac.ITAdmin))

	r.Get("/locations", s.listLocations)
	r.Post("/locations", withRoles(s.createLocation, manage...))
	r.Get("/locations/{id}", s.getLocation)
	r.Put("/locations/{id}", withRoles(s.updateLocation, manage...))
	r.Delete("/locations/{id}", withRoles(s.deleteLocation, rbac.ITAdmin))

	r.Get("/projects", s.listProjects)
	r.Post("/projects", withRoles(s.createProject, manage...))
	r.Get("/projects/{id}", s.getProject)
	r.Put("/projects/{id}", withRoles(s.updateProject, manage...))
	r.Delete("/projects/{id}", withRoles(s.deleteProject, rbac.ITAdmin))

	r.Get("/vendors", s.listVendors)
	r.Post("/vendors", withRoles(s.createVendor, manage...))
	r.Get("/vendors/{id}", s.getVendor)
	r.Put("/vendors/{id}", withRoles(s.updateVendor, manage...))
	r.Delete("/vendors/{id}", withRoles(s.deleteVendor, rbac.ITAdmin))

	r.Get("/categories", s.listCategories)
	r.Post("/categories", withRoles(s.createCategory, manage...))
	r.Get("/categories/{id}", s.getCategory)
	r.Put("/categories/{id}", withRoles(s.updateCategory, manage...))
	r.Delete("/categories/{id}", withRoles(s.deleteCategory, rbac.ITAdmin))
	r.Get("/categories/{id}/sub-categories", s.listSubCategories)
	r.Post("/categories/{id}/sub-categories", withRoles(s.createSubCategory, manage...))
	r.Put("/sub-categories/{id}", withRoles(s.updateSubCategory, manage...))
	r.Delete("/sub-categories/{id}", withRoles(s.deleteSubCategory, rbac.ITAdmin))

	// Transfer / disposal workflow
	r.Post("/operations/transfers", withRoles(s.createTransfers, rbac.Logistician))
	r.Get("/operations/transfers", s.listTransfers)
	r.Get("/operations/transfers/{id}", s.getTransfer)
	r.Patch("/operations/transfers/{id}/status", withRoles(s.updateTransferStatus, manage...))
	r.Get("/operations/transfers/{id}/good-issue-note", s.goodIssueNote)
	r.Get("/operations/users/{id}/asset-holder-form", s.assetHolderForm)

	r.Post("/operations/disposals", withRoles(s.createDisposals, manage...))
	r.Get("/operations/disposals", s.listDisposals)
	r.Get("/operations/disposals/{id}", s.getDisposal)
	r.Get("/operations/disposals/{id}/document", s.getDisposalDocument)
	r.Patch("/operations/disposals/{id}/status", withRoles(s.updateDisposalStatus, manage...))

	// Verification sessions and scans
	r.Post("/verifications/sessions", withRoles(s.createSession, manage...))
	r.Get("/verifications/sessions", s.listSessions)
	r.Get("/verifications/sessions/{id}", s.getSession)
	r.Patch("/verifications/sessions/{id}/status", withRoles(s.updateSessionStatus, manage...))
	r.Post("/verifications/sessions/{id}/verificators", withRoles(s.assignVerificators, manage...))
	r.Get("/verifications/sessions/{id}/report", s.sessionReport)
	r.Post("/verifications/verify/{assetID}", s.recordVerification)
	r.Get("/verifications", s.listVerifications)

	// Maintenance history
	r.Post("/maintenance", withRoles(s.createMaintenance, manage...))
	r.Get("/maintenance", s.listMaintenance)
	r.Get("/maintenance/{id}", s.getMaintenance)
	r.Put("/maintenance/{id}", withRoles(s.updateMaintenance, manage...))
	r.Delete("/maintenance/{id}", withRoles(s.deleteMaintenance, rbac.ITAdmin))

	// Reports
	r.Get("/reports/dashboard", s.dashboard)
	r.Get("/reports/assets/by-status", s.assetsByStatus)
	r.Get("/reports/assets/by-location", s.assetsByLocation)
	r.Get("/reports/assets/by-custodian", s.assetsByCustodian)
	r.Get("/reports/verifications/coverage", s.verificationCoverage)
	r.Get("/reports/transfers/summary", s.transferSummary)
	r.Get("/reports/financial/total-value", s.totalValue)
	r.Get("/reports/maintenance/due", s.maintenanceDue)

	// Excel import
	importsHandler := handlers.NewImportsHandler(s.Pool)
	r.Post("/imports/excel", withRoles(importsHandler.UploadExcel, manage...))

	// User management - IT Admin only
	r.Post("/users", withRoles(s.createUser, rbac.ITAdmin))
	r.Get("/users", withRoles(s.listUsers, manage...))
	r.Get("/users/{id}", withRoles(s.getUser, manage...))
	r.Put("/users/{id}", withRoles(s.updateUser, rbac.ITAdmin))
	r.Delete("/users/{id}", withRoles(s.deleteUser, rbac.ITAdmin))

	// Self-service routes
	r.Get("/auth/profile", s.getUserProfile)
	r.Put("/auth/change-password", s.changePassword)
}

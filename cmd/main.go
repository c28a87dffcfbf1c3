package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/loopfz/gadgeto/tonic"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	api "github.com/postpilot-hq/publish-engine/pkg/dryrun_api"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/database"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/handler"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/helpers/logger"
	problem "github.com/postpilot-hq/publish-engine/pkg/dryrun_api/helpers/problem"
	util "github.com/postpilot-hq/publish-engine/pkg/dryrun_api/helpers/util"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/repositories"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/services"
	"github.com/postpilot-hq/publish-engine/pkg/jobs"
)

func invalidParamsFromBinding(err error, sample any) []problem.InvalidParam {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []problem.InvalidParam{{Name: "body", Reason: err.Error()}}
	}

	t := reflect.TypeOf(sample)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	out := make([]problem.InvalidParam, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		// StructField -> json tag
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if tag := f.Tag.Get("json"); tag != "" && tag != "-" {
				name = strings.Split(tag, ",")[0]
			}
		}
		out = append(out, problem.InvalidParam{
			Name:   name,
			Reason: humanReason(fe),
		})
	}
	return out
}

func humanReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL (e.g. https://…)"
	default:
		return fe.Error()
	}
}

func init() {
	tonic.SetErrorHook(func(c *gin.Context, err error) (int, interface{}) {
		// 1) Bind/validate errors → 400 with the offending params
		var be tonic.BindError
		if errors.As(err, &be) || isValidationErr(err) {
			invalids := invalidParamsFromBinding(err, models.CreateTestRunInput{})
			apiErr := problem.NewBadRequest("body", "Invalid test run input", invalids...)
			c.Header("Content-Type", "application/problem+json")
			return apiErr.Status, apiErr
		}

		// 2) Our own APIError → pass-through
		if apiErr, ok := err.(problem.APIError); ok {
			c.Header("Content-Type", "application/problem+json")
			return apiErr.Status, apiErr
		}

		// 3) Everything else → 500
		internal := problem.NewInternalServerError(err.Error())
		c.Header("Content-Type", "application/problem+json")
		return internal.Status, internal
	})
}

func isValidationErr(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

func main() {
	_ = godotenv.Load()

	zlog, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	version, err := util.LoadOASVersion("./api/openapi.json")
	if err != nil {
		log.Fatalf("failed to load OAS version: %v", err)
	}

	dbcon := "postgres://" +
		os.Getenv("DB_USERNAME") + ":" +
		os.Getenv("DB_PASSWORD") + "@" +
		os.Getenv("DB_HOSTNAME") + "/" +
		os.Getenv("DB_DBNAME") + "?search_path=" +
		os.Getenv("DB_SCHEMA")
	db, err := database.Connect(dbcon)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	contentRepo := repositories.NewContentRepository(db)
	platformRepo := repositories.NewPlatformRepository(db)
	runRepo := repositories.NewTestRunRepository(db)
	dryRunService := services.NewDryRunService(contentRepo, platformRepo, runRepo, zlog)
	dryRunController := handler.NewDryRunController(dryRunService)
	jobs.ScheduleDailyRevalidation(context.Background(), dryRunService, zlog)

	// Start server
	router := api.NewRouter(version, dryRunController)

	log.Println("Server is running on port 1337")
	log.Fatal(http.ListenAndServe(":1337", router))
}

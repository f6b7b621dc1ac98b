package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/opst/knitsim/pkg/analysis"
	driver "github.com/opst/knitsim/pkg/analysisdriver"
	apianalyses "github.com/opst/knitsim/pkg/api/types/analyses"
	apierr "github.com/opst/knitsim/pkg/api/types/errors"
	"github.com/opst/knitsim/pkg/project"
)

// Analyses is the part of the driver used by handlers.
type Analyses interface {
	Run(a *analysis.Analysis, options driver.RunOptions) (*driver.CurrentAnalysis, error)
	Summaries() []driver.Summary
	Summary(id uuid.UUID) (driver.Summary, bool)
	DataPoints(id uuid.UUID) ([]analysis.DataPoint, bool)
	CurrentAnalysis(id uuid.UUID) (*driver.CurrentAnalysis, bool)
	Stop(ca *driver.CurrentAnalysis)
	UnpauseQueue()
}

// Archive finds analyses no longer being run.
type Archive interface {
	Analysis(id uuid.UUID) (*analysis.Analysis, error)
}

var _ Analyses = &driver.Driver{}
var _ Archive = &project.Memory{}

// maxManifestSize caps the request body of manifests.
const maxManifestSize = 4 << 20

func PostAnalysisHandler(d Analyses, options func(*analysis.Analysis) driver.RunOptions) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxManifestSize))
		if err != nil {
			return apierr.BadRequest("request body cannot be read", err)
		}

		a, err := analysis.UnmarshalManifest(body)
		if err != nil {
			return apierr.BadRequest("request body should be an analysis manifest in YAML or JSON", err)
		}

		ca, err := d.Run(a, options(a))
		if ca == nil {
			if errors.Is(err, driver.ErrInvalidDataPoints) || errors.Is(err, driver.ErrInvalidResults) {
				return apierr.UnprocessableEntity("analysis cannot be run", err)
			}
			return apierr.InternalServerError(err)
		}
		if err != nil {
			c.Logger().Warnf("analysis '%s' (%s) is started with error: %s", a.Name, a.ID, err)
		}

		s, ok := d.Summary(a.ID)
		if !ok {
			// it has completed already.
			s = driver.Summarize(a)
		}
		return c.JSON(http.StatusCreated, apianalyses.ComposeSummary(s))
	}
}

func GetAnalysesHandler(d Analyses) echo.HandlerFunc {
	return func(c echo.Context) error {
		summaries := d.Summaries()
		resp := make([]apianalyses.Summary, 0, len(summaries))
		for _, s := range summaries {
			resp = append(resp, apianalyses.ComposeSummary(s))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func GetAnalysisHandler(d Analyses, archive Archive, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := apianalyses.ParseId(c.Param(param))
		if err != nil {
			return apierr.BadRequest("analysis id should be a UUID", err)
		}

		if ca, ok := d.CurrentAnalysis(id); ok {
			s, sok := d.Summary(id)
			dps, dok := d.DataPoints(id)
			if sok && dok {
				return c.JSON(
					http.StatusOK,
					apianalyses.ComposeDetail(s, ca.Analysis().Problem, dps),
				)
			}
			// finished while being looked up. falls back to the archive.
		}

		a, err := archive.Analysis(id)
		if errors.Is(err, project.ErrAnalysisNotFound) {
			return apierr.NotFound()
		} else if err != nil {
			return apierr.InternalServerError(err)
		}

		dps := make([]analysis.DataPoint, len(a.DataPoints))
		for i, dp := range a.DataPoints {
			dps[i] = *dp
		}
		return c.JSON(
			http.StatusOK,
			apianalyses.ComposeDetail(driver.Summarize(a), a.Problem, dps),
		)
	}
}

func DeleteAnalysisHandler(d Analyses, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := apianalyses.ParseId(c.Param(param))
		if err != nil {
			return apierr.BadRequest("analysis id should be a UUID", err)
		}

		ca, ok := d.CurrentAnalysis(id)
		if !ok {
			return apierr.NotFound(apierr.WithAdvice("the analysis is not running"))
		}
		d.Stop(ca)
		return c.NoContent(http.StatusNoContent)
	}
}

func PutUnpauseQueueHandler(d Analyses) echo.HandlerFunc {
	return func(c echo.Context) error {
		d.UnpauseQueue()
		return c.NoContent(http.StatusNoContent)
	}
}

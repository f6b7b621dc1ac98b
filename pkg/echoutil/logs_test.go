package echoutil_test

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	httptestutil "github.com/opst/knitsim/internal/testutils/http"
	"github.com/opst/knitsim/pkg/echoutil"
)

func TestParseLevel(t *testing.T) {
	for name, expect := range map[string]struct {
		lvl log.Lvl
		ok  bool
	}{
		"debug": {log.DEBUG, true},
		"INFO":  {log.INFO, true},
		"warn":  {log.WARN, true},
		"":      {log.WARN, true},
		"error": {log.ERROR, true},
		"off":   {log.OFF, true},
		"loud":  {log.WARN, false},
	} {
		t.Run("When '"+name+"' is given", func(t *testing.T) {
			lvl, ok := echoutil.ParseLevel(name)
			if lvl != expect.lvl || ok != expect.ok {
				t.Errorf("actual=(%v, %v), expect=(%v, %v)", lvl, ok, expect.lvl, expect.ok)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	e := echo.New()
	echoutil.SetLevel(e, "error")
	if actual := e.Logger.Level(); actual != log.ERROR {
		t.Errorf("actual=%v, expect=%v", actual, log.ERROR)
	}
}

func TestLogHandlerFunc(t *testing.T) {
	e := echo.New()
	e.Logger.SetLevel(log.OFF)
	invoked := false
	handler := echoutil.LogHandlerFunc(func(c echo.Context) error {
		invoked = true
		return c.NoContent(http.StatusAccepted)
	})

	c, resp := httptestutil.Get(e, "/api/analyses")
	if err := handler(c); err != nil {
		t.Fatal(err)
	}
	if !invoked || resp.Code != http.StatusAccepted {
		t.Errorf("actual=(%v, %d)", invoked, resp.Code)
	}
}

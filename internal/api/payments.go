package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/checktrack/checktrack/internal/importer"
	"github.com/checktrack/checktrack/internal/model"
	"github.com/checktrack/checktrack/internal/payments"
)

// dateLayout is the date-only form used in requests and query strings.
const dateLayout = "2006-01-02"

type paymentRequest struct {
	DueDate       string          `json:"dueDate"`
	CheckNumber   string          `json:"checkNumber"`
	Bank          string          `json:"bank"`
	Company       string          `json:"company"`
	BusinessGroup string          `json:"businessGroup"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
}

// draft converts the request. An empty or unreadable due date is left zero so
// validation reports it.
func (r paymentRequest) draft(loc *time.Location) payments.Draft {
	due, _ := parseDate(r.DueDate, loc)
	return payments.Draft{
		DueDate:       due,
		CheckNumber:   r.CheckNumber,
		Bank:          r.Bank,
		Company:       r.Company,
		BusinessGroup: r.BusinessGroup,
		Description:   r.Description,
		Amount:        r.Amount,
	}
}

// parseDate accepts YYYY-MM-DD in loc or a full RFC 3339 timestamp.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (s *Server) location() *time.Location {
	return s.app.Clock.Now().Location()
}

type listResponse struct {
	Payments []model.Payment  `json:"payments"`
	Summary  importer.Summary `json:"summary"`
}

func (s *Server) listPayments(c *gin.Context) {
	f, err := s.filterFromQuery(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	list, err := s.app.Payments.List(c.Request.Context(), f)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Payments: list, Summary: importer.Summarize(list)})
}

func (s *Server) filterFromQuery(c *gin.Context) (payments.Filter, error) {
	f := payments.Filter{
		Bank:          c.Query("bank"),
		Company:       c.Query("company"),
		BusinessGroup: c.Query("businessGroup"),
		Search:        c.Query("q"),
	}
	if v := c.Query("status"); v != "" {
		st, err := model.ParseStatus(v)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, s.location())
		if err != nil {
			return f, fmt.Errorf("invalid from date %q", v)
		}
		f.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, s.location())
		if err != nil {
			return f, fmt.Errorf("invalid to date %q", v)
		}
		f.To = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return f, nil
}

func (s *Server) overduePayments(c *gin.Context) {
	list, err := s.app.Payments.Overdue(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if list == nil {
		list = []model.Payment{}
	}
	c.JSON(http.StatusOK, listResponse{Payments: list, Summary: importer.Summarize(list)})
}

func (s *Server) getPayment(c *gin.Context) {
	p, err := s.app.Payments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) addPayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payment body")
		return
	}
	p, err := s.app.Payments.Add(c.Request.Context(), currentUser(c), req.draft(s.location()))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.commit(c, "add payment "+p.CheckNumber)
	c.JSON(http.StatusCreated, p)
}

func (s *Server) editPayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payment body")
		return
	}
	p, err := s.app.Payments.Edit(c.Request.Context(), currentUser(c), c.Param("id"), req.draft(s.location()))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.commit(c, "edit payment "+p.CheckNumber)
	c.JSON(http.StatusOK, p)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) changeStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	st, err := model.ParseStatus(req.Status)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := s.app.Payments.ChangeStatus(c.Request.Context(), currentUser(c), c.Param("id"), st)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.commit(c, fmt.Sprintf("mark payment %s %s", p.CheckNumber, p.Status))
	c.JSON(http.StatusOK, p)
}

func (s *Server) deletePayment(c *gin.Context) {
	if err := s.app.Payments.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		s.abortWithError(c, err)
		return
	}
	s.commit(c, "delete payment "+c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (s *Server) clearPayments(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "password is required")
		return
	}
	n, err := s.app.Payments.Clear(c.Request.Context(), currentUser(c), req.Password)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.commit(c, fmt.Sprintf("clear %d payments", n))
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/ageguard/internal/common"
	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"github.com/dmitrijs2005/ageguard/internal/server/services"
	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"
)

type recordSpendingRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type processConsentRequest struct {
	Token              string                       `json:"token"`
	Agrees             *bool                        `json:"agrees"`
	CustomRestrictions *models.RestrictionOverrides `json:"customRestrictions"`
}

func bindBody(c fiber.Ctx, v any) error {
	if err := c.Bind().Body(v); err != nil {
		return fmt.Errorf("%w: invalid request body", common.ErrValidation)
	}
	return nil
}

func (s *Server) check(c fiber.Ctx) error {
	var amount *decimal.Decimal
	if raw := c.Query("amount"); raw != "" {
		a, err := services.ParseAmount(raw)
		if err != nil {
			return err
		}
		amount = &a
	}

	res, err := s.svc.Checker.Check(c.Context(), userID(c), amount)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (s *Server) spendingCheck(c fiber.Ctx) error {
	amount, err := services.ParseAmount(c.Query("amount"))
	if err != nil {
		return err
	}

	res, err := s.svc.Spending.Check(c.Context(), userID(c), amount)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (s *Server) timeCheck(c fiber.Ctx) error {
	res, err := s.svc.TimeWindow.Check(c.Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (s *Server) usageCheck(c fiber.Ctx) error {
	res, err := s.svc.Usage.Check(c.Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (s *Server) myRestrictions(c fiber.Ctx) error {
	b, err := s.svc.Restrictions.Get(c.Context(), userID(c))
	if err != nil {
		return err
	}
	// nil encodes as null: the user is unrestricted.
	return c.JSON(b)
}

// accountStatus reports the purchasing switch. Until a parent has answered a
// consent request the switch reads as off.
func (s *Server) accountStatus(c fiber.Ctx) error {
	uid := userID(c)
	st, err := s.svc.Restrictions.AccountStatus(c.Context(), uid)
	if err != nil {
		return err
	}
	if st == nil {
		st = &models.AccountStatus{UserID: uid}
	}
	return c.JSON(st)
}

func (s *Server) recordSpending(c fiber.Ctx) error {
	var req recordSpendingRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	res, err := s.svc.Spending.Record(c.Context(), userID(c), req.Amount, req.Description)
	if err != nil {
		return err
	}
	if !res.Decision.Allowed {
		return c.Status(http.StatusForbidden).JSON(res)
	}
	return c.JSON(res)
}

func (s *Server) startSession(c fiber.Ctx) error {
	uid := userID(c)

	td, err := s.svc.TimeWindow.Check(c.Context(), uid)
	if err != nil {
		return err
	}
	if !td.Allowed {
		return c.Status(http.StatusForbidden).JSON(td)
	}

	res, err := s.svc.Sessions.Start(c.Context(), uid)
	if err != nil {
		return err
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	return c.Status(status).JSON(res)
}

func (s *Server) endSession(c fiber.Ctx) error {
	sess, err := s.svc.Sessions.End(c.Context(), userID(c), c.Params("sessionId"))
	if err != nil {
		return err
	}
	return c.JSON(sess)
}

func (s *Server) requestConsent(c fiber.Ctx) error {
	var req models.ConsentRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	req.ChildUserID = userID(c)

	res, err := s.svc.Consent.Request(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(res)
}

func (s *Server) processConsent(c fiber.Ctx) error {
	var req processConsentRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Token) == "" {
		return fmt.Errorf("%w: token is required", common.ErrValidation)
	}
	if req.Agrees == nil {
		return fmt.Errorf("%w: agrees is required", common.ErrValidation)
	}

	res, err := s.svc.Consent.Process(c.Context(), req.Token, *req.Agrees, req.CustomRestrictions)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (s *Server) calculateAge(c fiber.Ctx) error {
	res, err := s.svc.Restrictions.CalculateAge(c.Query("birthDate"))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

package server

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"github.com/taisys-technologies/voc-vault/internal/domain"
)

func bindRoleRequest(c echo.Context) (common.Address, domain.Role, common.Address, error) {
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return common.Address{}, 0, common.Address{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return common.Address{}, 0, common.Address{}, err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return common.Address{}, 0, common.Address{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return common.HexToAddress(req.Caller), role, common.HexToAddress(req.Account), nil
}

func roleParam(c echo.Context) (domain.Role, error) {
	role, err := domain.ParseRole(c.Param("role"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return role, nil
}

func (s *Server) postGrantRole(c echo.Context) error {
	caller, role, account, err := bindRoleRequest(c)
	if err != nil {
		return err
	}
	if err := s.vault.GrantRole(c.Request().Context(), caller, role, account); err != nil {
		return s.fail(c, "grant_role", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) postRevokeRole(c echo.Context) error {
	caller, role, account, err := bindRoleRequest(c)
	if err != nil {
		return err
	}
	if err := s.vault.RevokeRole(c.Request().Context(), caller, role, account); err != nil {
		return s.fail(c, "revoke_role", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getRoleMembers(c echo.Context) error {
	role, err := roleParam(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleMembersResponse{
		Role:    role.String(),
		Members: hexAddresses(s.vault.RoleMembers(role)),
	})
}

func (s *Server) getRoleCheck(c echo.Context) error {
	role, err := roleParam(c)
	if err != nil {
		return err
	}
	account, err := addressParam(c.QueryParam("account"), "account")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleCheckResponse{
		Role:    role.String(),
		Account: account.Hex(),
		HasRole: s.vault.HasRole(role, account),
	})
}

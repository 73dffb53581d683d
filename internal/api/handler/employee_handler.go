package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/employee-registry/internal/core/ports"
)

// EmployeeHandler handles HTTP requests for employee operations. Service
// errors are returned to Echo's error handler, which maps them to statuses.
type EmployeeHandler struct {
	service ports.EmployeeService
}

func NewEmployeeHandler(service ports.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

// Register mounts the employee routes on g. Static segments are registered
// alongside :id; Echo's router prefers them.
func (h *EmployeeHandler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/active", h.ListActive)
	g.GET("/search", h.Search)
	g.GET("/department/:department", h.ListByDepartment)
	g.GET("/department/:department/count", h.CountByDepartment)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.SoftDelete)
	g.DELETE("/:id/permanent", h.HardDelete)
	g.PATCH("/:id/toggle-status", h.ToggleStatus)
}

// List handles GET /api/v1/employees.
//
// @Summary      List all employees
// @Tags         employees
// @Produce      json
// @Success      200  {array}   employeeResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/v1/employees [get]
func (h *EmployeeHandler) List(c echo.Context) error {
	list, err := h.service.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmployeeResponses(list))
}

// Get handles GET /api/v1/employees/:id.
//
// @Summary      Get an employee by id
// @Tags         employees
// @Produce      json
// @Param        id   path      int  true  "Employee id"
// @Success      200  {object}  employeeResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/employees/{id} [get]
func (h *EmployeeHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	e, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmployeeResponse(e))
}

// Create handles POST /api/v1/employees.
//
// @Summary      Create an employee
// @Description  New employees are always active. Any id in the payload is ignored.
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        body  body      employeeRequest  true  "Employee"
// @Success      201   {object}  employeeResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/v1/employees [post]
func (h *EmployeeHandler) Create(c echo.Context) error {
	in, err := bindEmployee(c)
	if err != nil {
		return err
	}
	e, err := h.service.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toEmployeeResponse(e))
}

// Update handles PUT /api/v1/employees/:id. Every mutable field is replaced.
//
// @Summary      Replace an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "Employee id"
// @Param        body  body      employeeRequest  true  "Employee"
// @Success      200   {object}  employeeResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/v1/employees/{id} [put]
func (h *EmployeeHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	in, err := bindEmployee(c)
	if err != nil {
		return err
	}
	e, err := h.service.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmployeeResponse(e))
}

// SoftDelete handles DELETE /api/v1/employees/:id.
//
// @Summary      Deactivate an employee
// @Tags         employees
// @Produce      json
// @Param        id   path      int  true  "Employee id"
// @Success      200  {object}  deleteResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/employees/{id} [delete]
func (h *EmployeeHandler) SoftDelete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.SoftDelete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteResponse{
		Message: "Employee deactivated successfully",
		ID:      strconv.FormatInt(id, 10),
	})
}

// HardDelete handles DELETE /api/v1/employees/:id/permanent.
//
// @Summary      Delete an employee permanently
// @Tags         employees
// @Produce      json
// @Param        id   path      int  true  "Employee id"
// @Success      200  {object}  deleteResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/employees/{id}/permanent [delete]
func (h *EmployeeHandler) HardDelete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.HardDelete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteResponse{
		Message: "Employee deleted permanently",
		ID:      strconv.FormatInt(id, 10),
	})
}

// ListByDepartment handles GET /api/v1/employees/department/:department.
//
// @Summary      List employees of a department
// @Tags         employees
// @Produce      json
// @Param        department  path   string  true  "Department (exact match)"
// @Success      200         {array}  employeeResponse
// @Router       /api/v1/employees/department/{department} [get]
func (h *EmployeeHandler) ListByDepartment(c echo.Context) error {
	list, err := h.service.GetByDepartment(c.Request().Context(), c.Param("department"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmployeeResponses(list))
}

// CountByDepartment handles GET /api/v1/employees/department/:department/count.
//
// @Summary      Count employees of a department
// @Tags         employees
// @Produce      json
// @Param        department  path      string  true  "Department (exact match)"
// @Success      200         {object}  departmentCountResponse
// @Router       /api/v1/employees/department/{department}/count [get]
func (h *EmployeeHandler) CountByDepartment(c echo.Context) error {
	dept := c.Param("department")
	n, err := h.service.CountByDepartment(c.Request().Context(), dept)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, departmentCountResponse{Department: dept, Count: n})
}

// ListActive handles GET /api/v1/employees/active.
//
// @Summary      List active employees
// @Tags         employees
// @Produce      json
// @Success      200  {array}  employeeResponse
// @Router       /api/v1/employees/active [get]
func (h *EmployeeHandler) ListActive(c echo.Context) error {
	list, err := h.service.GetActive(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmployeeResponses(list))
}

// Search handles GET /api/v1/employees/search?term=.
//
// @Summary      Search employees by name
// @Description  Case-insensitive substring match on first or last name.
// @Tags         employees
// @Produce      json
// @Param        term  query    string  true  "Search term"
// @Success      200   {array}  employeeResponse
// @Router       /api/v1/employees/search [get]
func (h *EmployeeHandler) Search(c echo.Context) error {
	list, err := h.service.SearchByName(c.Request().Context(), c.QueryParam("term"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmployeeResponses(list))
}

// ToggleStatus handles PATCH /api/v1/employees/:id/toggle-status.
//
// @Summary      Flip an employee's active flag
// @Tags         employees
// @Produce      json
// @Param        id   path      int  true  "Employee id"
// @Success      200  {object}  employeeResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/employees/{id}/toggle-status [patch]
func (h *EmployeeHandler) ToggleStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	e, err := h.service.ToggleStatus(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmployeeResponse(e))
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid employee id")
	}
	return id, nil
}

func bindEmployee(c echo.Context) (ports.EmployeeInput, error) {
	var req employeeRequest
	if err := c.Bind(&req); err != nil {
		return ports.EmployeeInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return ports.EmployeeInput{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := toEmployeeInput(req)
	if err != nil {
		return ports.EmployeeInput{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return in, nil
}

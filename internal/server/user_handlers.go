package server

import (
	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/v1/users/register
// @Summary Register a channel
// @Description Create an account from a multipart form with an avatar and optional cover image
// @Tags users
// @Accept mpfd
// @Produce json
// @Param fullName formData string true "Full name"
// @Param email formData string true "Email"
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param avatar formData file true "Avatar image"
// @Param coverImage formData file false "Cover image"
// @Success 201 {object} models.APIResponse{data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	paths, err := s.saveUploads(c, "avatar", "coverImage")
	if err != nil {
		return err
	}

	user, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		FullName:   c.FormValue("fullName"),
		Email:      c.FormValue("email"),
		Username:   c.FormValue("username"),
		Password:   c.FormValue("password"),
		AvatarPath: paths[0],
		CoverPath:  paths[1],
	})
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusCreated, user, "User registered successfully")
}

// Login handles POST /api/v1/users/login
// @Summary Log in
// @Description Authenticate with email or username; sets accessToken and refreshToken cookies
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{email=string,username=string,password=string} true "Credentials"
// @Success 200 {object} models.APIResponse{data=service.Session}
// @Failure 401 {object} models.ErrorResponse
// @Router /users/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" form:"email"`
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	session, err := s.authService.Login(c.UserContext(), service.LoginInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	s.setSessionCookies(c, session)
	return models.Respond(c, fiber.StatusOK, session, "User logged in successfully")
}

// Logout handles POST /api/v1/users/logout
// @Summary Log out
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /users/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims := currentClaims(c)
	if claims == nil {
		return models.NewUnauthorizedError("Unauthorized request")
	}
	if err := s.authService.Logout(c.UserContext(), claims); err != nil {
		return err
	}
	s.clearSessionCookies(c)
	return models.Respond(c, fiber.StatusOK, fiber.Map{}, "User logged out")
}

// RefreshToken handles POST /api/v1/users/refresh-token
// @Summary Rotate tokens
// @Description Exchange the refresh token (cookie or body) for a new token pair
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{refreshToken=string} false "Refresh token when no cookie is sent"
// @Success 200 {object} models.APIResponse{data=service.Session}
// @Failure 401 {object} models.ErrorResponse
// @Router /users/refresh-token [post]
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	token := c.Cookies(refreshCookie)
	if token == "" {
		var req struct {
			RefreshToken string `json:"refreshToken" form:"refreshToken"`
		}
		_ = c.BodyParser(&req)
		token = req.RefreshToken
	}

	session, err := s.authService.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}
	s.setSessionCookies(c, session)
	return models.Respond(c, fiber.StatusOK, session, "Access token refreshed")
}

// ChangePassword handles POST /api/v1/users/change-password
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{oldPassword=string,newPassword=string} true "Passwords"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /users/change-password [post]
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		OldPassword string `json:"oldPassword" form:"oldPassword"`
		NewPassword string `json:"newPassword" form:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	if err := s.authService.ChangePassword(c.UserContext(), service.ChangePasswordInput{
		UserID:      currentUserID(c),
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	}); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{}, "Password changed successfully")
}

// GetCurrentUser handles GET /api/v1/users/current-user
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.User}
// @Router /users/current-user [get]
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, user, "Current user fetched successfully")
}

// UpdateAccount handles PATCH /api/v1/users/update-account
// @Summary Update account details
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{fullName=string,email=string} true "Account details"
// @Success 200 {object} models.APIResponse{data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/update-account [patch]
func (s *Server) UpdateAccount(c *fiber.Ctx) error {
	var req struct {
		FullName string `json:"fullName" form:"fullName"`
		Email    string `json:"email" form:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	user, err := s.userService.UpdateAccount(c.UserContext(), service.UpdateAccountInput{
		UserID:   currentUserID(c),
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, user, "Account details updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar
// @Summary Replace avatar
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} models.APIResponse{data=models.User}
// @Router /users/avatar [patch]
func (s *Server) UpdateAvatar(c *fiber.Ctx) error {
	path, err := s.saveUpload(c, "avatar")
	if err != nil {
		return err
	}
	user, err := s.userService.UpdateAvatar(c.UserContext(), currentUserID(c), path)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, user, "Avatar updated successfully")
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image
// @Summary Replace cover image
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param coverImage formData file true "Cover image"
// @Success 200 {object} models.APIResponse{data=models.User}
// @Router /users/cover-image [patch]
func (s *Server) UpdateCoverImage(c *fiber.Ctx) error {
	path, err := s.saveUpload(c, "coverImage")
	if err != nil {
		return err
	}
	user, err := s.userService.UpdateCoverImage(c.UserContext(), currentUserID(c), path)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, user, "Cover image updated successfully")
}

// GetChannelProfile handles GET /api/v1/users/c/:username
// @Summary Channel profile
// @Tags users
// @Produce json
// @Param username path string true "Channel username"
// @Success 200 {object} models.APIResponse{data=models.ChannelProfile}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/c/{username} [get]
func (s *Server) GetChannelProfile(c *fiber.Ctx) error {
	profile, err := s.userService.ChannelProfile(c.UserContext(), c.Params("username"), currentUserID(c))
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, profile, "Channel profile fetched successfully")
}

// GetWatchHistory handles GET /api/v1/users/history
// @Summary Watch history
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} models.APIResponse{data=models.WatchHistoryPage}
// @Router /users/history [get]
func (s *Server) GetWatchHistory(c *fiber.Ctx) error {
	page, limit, err := parsePagination(c, defaultPageLimit)
	if err != nil {
		return err
	}
	history, err := s.userService.WatchHistory(c.UserContext(), currentUserID(c), page, limit)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, history, "Watch history fetched successfully")
}

package httpapi

import (
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
	"github.com/gofiber/fiber/v2"
)

// bind parses the JSON body into dst and validates it.
func (s *HTTPServer) bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid input")
	}
	if err := s.validate.Struct(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

func (s *HTTPServer) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// --- auth ---

func (s *HTTPServer) register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	u, err := s.services.Users.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	s.logger.Info(c.UserContext(), "Registered", "username", u.UserName)
	return c.Status(fiber.StatusCreated).JSON(userResponse{ID: u.ID, Username: u.UserName, CreatedAt: u.CreatedAt})
}

func (s *HTTPServer) login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	tokens, err := s.services.Users.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(tokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

func (s *HTTPServer) refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	tokens, err := s.services.Users.RefreshToken(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(tokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

// --- devices ---

func (s *HTTPServer) registerDevice(c *fiber.Ctx) error {
	var req deviceRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	d, err := s.services.Devices.Register(c.UserContext(), req.RegistrationID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(deviceResponse{ID: d.ID, RegistrationID: d.RegistrationID, CreatedAt: d.CreatedAt})
}

func (s *HTTPServer) unregisterDevice(c *fiber.Ctx) error {
	if err := s.services.Devices.Unregister(c.UserContext(), c.Params("token")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// --- media ---

func (s *HTTPServer) uploadURL(c *fiber.Ctx) error {
	var req uploadRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	key, url, err := s.services.Media.UploadURL(c.UserContext(), req.Kind, req.ContentType)
	if err != nil {
		return err
	}
	return c.JSON(mediaResponse{Key: key, URL: url})
}

func (s *HTTPServer) downloadURL(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" {
		return fmt.Errorf("%w: key is required", common.ErrValidation)
	}
	url, err := s.services.Media.DownloadURL(c.UserContext(), key)
	if err != nil {
		return err
	}
	return c.JSON(mediaResponse{URL: url})
}

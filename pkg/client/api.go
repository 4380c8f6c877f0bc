package client

import (
	"context"
	"fmt"
	"time"
)

// Typed wrappers over the generic verbs, one per API endpoint. They exist
// so the presentation layer never hard-codes paths or response shapes.

const (
	loginEndpoint       = "/auth/login"
	registerEndpoint    = "/auth/register"
	userEndpoint        = "/auth/user"
	userAddressEndpoint = userEndpoint + "/address"
	carEndpoint         = "/cars"
	carBrandsEndpoint   = carEndpoint + "/brands"
	carModelsEndpoint   = carEndpoint + "/models"
	workshopEndpoint    = "/workshops"
)

type RegisterRequest struct {
	Name       string  `json:"name"`
	Surname    string  `json:"surname"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Street     string  `json:"street"`
	City       string  `json:"city"`
	BuildingNo string  `json:"buildingNo"`
	LocalNo    *string `json:"localNo,omitempty"`
	PostCode   string  `json:"postCode"`
}

type UserInfo struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
}

type AddressInfo struct {
	Street     string  `json:"street"`
	City       string  `json:"city"`
	BuildingNo string  `json:"buildingNo"`
	LocalNo    *string `json:"localNo"`
	PostCode   string  `json:"postCode"`
}

type CarRequest struct {
	ID                    uint64  `json:"id,omitempty"`
	BrandID               uint64  `json:"brand_id"`
	ModelID               uint64  `json:"model_id"`
	RegistrationNumber    string  `json:"registrationNumber"`
	FirstRegistrationDate string  `json:"firstRegistrationDate"`
	Icon                  *string `json:"icon,omitempty"`
}

type Car struct {
	ID                    uint64  `json:"id"`
	Brand                 string  `json:"brand"`
	Model                 string  `json:"model"`
	RegistrationNumber    string  `json:"registrationNumber"`
	FirstRegistrationDate string  `json:"firstRegistrationDate"`
	Icon                  *string `json:"icon"`
}

type Brand struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type Model struct {
	ID      uint64 `json:"id"`
	BrandID uint64 `json:"brand_id"`
	Name    string `json:"name"`
}

type Workshop struct {
	ID             uint64      `json:"id"`
	Name           string      `json:"name"`
	Address        AddressInfo `json:"address"`
	Image          *string     `json:"image"`
	Rate           float64     `json:"rate"`
	OpinionsNumber uint64      `json:"opinionsNumber"`
	Description    *string     `json:"description"`
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.Post(ctx, registerEndpoint, req, nil)
}

// Login authenticates and stores the returned access token as the current
// session. The login endpoint hands out no refresh token, so the stored
// session has none; once the access token expires the next refresh attempt
// fails and the session is cleared.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.Post(ctx, loginEndpoint, body, &resp); err != nil {
		return err
	}
	sess := Session{AccessToken: resp.Token}
	if exp, err := tokenExpiry(resp.Token); err == nil {
		sess.AccessExpiresAt = exp
	} else {
		sess.AccessExpiresAt = time.Now()
	}
	c.store.Save(sess)
	return nil
}

// Logout drops the client-side session. The server keeps no session state
// for access tokens, so nothing needs to be called remotely.
func (c *Client) Logout() { c.store.Clear() }

func (c *Client) GetUser(ctx context.Context) (UserInfo, error) {
	var out UserInfo
	err := c.Get(ctx, userEndpoint, &out)
	return out, err
}

func (c *Client) UpdateUser(ctx context.Context, u UserInfo) error {
	return c.Put(ctx, userEndpoint, u, nil)
}

func (c *Client) GetUserAddress(ctx context.Context) (AddressInfo, error) {
	var out AddressInfo
	err := c.Get(ctx, userAddressEndpoint, &out)
	return out, err
}

func (c *Client) UpdateUserAddress(ctx context.Context, a AddressInfo) error {
	return c.Put(ctx, userAddressEndpoint, a, nil)
}

func (c *Client) GetCars(ctx context.Context) ([]Car, error) {
	var out []Car
	err := c.Get(ctx, carEndpoint, &out)
	return out, err
}

func (c *Client) AddCar(ctx context.Context, car CarRequest) error {
	return c.Post(ctx, carEndpoint, car, nil)
}

func (c *Client) UpdateCar(ctx context.Context, car CarRequest) error {
	return c.Put(ctx, carEndpoint, car, nil)
}

func (c *Client) DeleteCar(ctx context.Context, id uint64) error {
	return c.Delete(ctx, fmt.Sprintf("%s/%d", carEndpoint, id), nil)
}

func (c *Client) GetCarBrands(ctx context.Context) ([]Brand, error) {
	var out []Brand
	err := c.Get(ctx, carBrandsEndpoint, &out)
	return out, err
}

func (c *Client) GetCarModels(ctx context.Context, brandID uint64) ([]Model, error) {
	var out []Model
	err := c.Get(ctx, fmt.Sprintf("%s/%d", carModelsEndpoint, brandID), &out)
	return out, err
}

func (c *Client) GetWorkshops(ctx context.Context) ([]Workshop, error) {
	var out []Workshop
	err := c.Get(ctx, workshopEndpoint, &out)
	return out, err
}

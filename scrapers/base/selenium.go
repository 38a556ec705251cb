package base

import (
	"context"
	"fmt"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

const defaultChromeDriverPath = "/usr/local/bin/chromedriver"

// SeleniumRenderer drives a full Chrome through a locally started chromedriver.
type SeleniumRenderer struct {
	DriverPath string
	UserAgent  string
	Ports      *PortManager
}

// NewSeleniumRenderer creates a renderer; an empty driverPath uses the default location
func NewSeleniumRenderer(driverPath string) *SeleniumRenderer {
	if driverPath == "" {
		driverPath = defaultChromeDriverPath
	}
	InitPortManager(4444, 16)
	return &SeleniumRenderer{DriverPath: driverPath, UserAgent: defaultUserAgent, Ports: GlobalPortManager}
}

func (s *SeleniumRenderer) Name() string { return "Selenium" }

// Render fetches the URL using Selenium and returns the page source
func (s *SeleniumRenderer) Render(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	port, err := s.Ports.GetPort()
	if err != nil {
		return "", fmt.Errorf("port error: %w", err)
	}
	defer s.Ports.ReleasePort(port)

	service, err := selenium.NewChromeDriverService(s.DriverPath, port)
	if err != nil {
		return "", fmt.Errorf("error starting Chrome driver service: %v", err)
	}
	defer service.Stop()

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{
		Args: []string{
			"--headless=new",
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
			"--disable-gpu",
			"--window-size=1920,1080",
			fmt.Sprintf("--user-agent=%s", s.UserAgent),
		},
		ExcludeSwitches: []string{"enable-automation"},
	})

	driver, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", port))
	if err != nil {
		return "", fmt.Errorf("error creating WebDriver: %v", err)
	}
	defer driver.Quit()

	timeout := 60 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	driver.SetPageLoadTimeout(timeout)

	if err := driver.Get(url); err != nil {
		return "", fmt.Errorf("navigation error: %w", err)
	}

	driver.ExecuteScript(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`, nil)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(2 * time.Second):
	}

	html, err := driver.PageSource()
	if err != nil {
		return "", fmt.Errorf("page source error: %w", err)
	}
	return html, nil
}

package connector

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
)

// newHTTPClient builds the client a connection owns when none is supplied.
func newHTTPClient(opts ClientOptions) (*http.Client, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxConnsPerHost = opts.MaxConnsPerHost
	tr.MaxIdleConns = opts.MaxIdleConns
	tr.MaxIdleConnsPerHost = opts.MaxIdleConns

	if opts.InsecureSkipVerify {
		if tr.TLSClientConfig == nil {
			tr.TLSClientConfig = &tls.Config{}
		}
		tr.TLSClientConfig.InsecureSkipVerify = true
	}

	switch {
	case opts.Proxy != "":
		proxy, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", opts.Proxy, err)
		}
		tr.Proxy = http.ProxyURL(proxy)
	case opts.TrustEnv:
		tr.Proxy = http.ProxyFromEnvironment
	default:
		tr.Proxy = nil
	}

	return &http.Client{
		Transport:     tr,
		Timeout:       opts.Timeout,
		CheckRedirect: redirectPolicy(opts),
	}, nil
}

func redirectPolicy(opts ClientOptions) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if !opts.FollowRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) >= opts.MaxRedirects {
			return fmt.Errorf("stopped after %d redirects", opts.MaxRedirects)
		}
		return nil
	}
}

package models

// LoginInfo describes an external login as callers see it.
type LoginInfo struct {
	LoginProvider       string
	ProviderKey         string
	ProviderDisplayName string
}

// UserLogin is the persisted form of an external login.
type UserLogin struct {
	LoginProvider       string `json:"loginProvider"`
	ProviderDisplayName string `json:"providerDisplayName"`
	ProviderKey         string `json:"providerKey"`
}

func NewUserLogin(info LoginInfo) UserLogin {
	return UserLogin{
		LoginProvider:       info.LoginProvider,
		ProviderKey:         info.ProviderKey,
		ProviderDisplayName: info.ProviderDisplayName,
	}
}

func (l UserLogin) LoginInfo() LoginInfo {
	return LoginInfo{
		LoginProvider:       l.LoginProvider,
		ProviderKey:         l.ProviderKey,
		ProviderDisplayName: l.ProviderDisplayName,
	}
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recognizers

import (
	"ja-redact/internal/detector"
)

// Pattern is a single regex within a recognizer definition.
type Pattern struct {
	Name  string  `yaml:"name" json:"name"`
	Regex string  `yaml:"regex" json:"regex"`
	Score float64 `yaml:"score" json:"score"`
}

// Definition groups the patterns that emit one entity type. Definitions are
// keyed by Name when configuration layers are merged.
type Definition struct {
	Name            string    `yaml:"name" json:"name"`
	SupportedEntity string    `yaml:"supported_entity" json:"supported_entity"`
	Enabled         *bool     `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Patterns        []Pattern `yaml:"patterns,omitempty" json:"patterns,omitempty"`

	// Context overrides the context-word table for this definition
	Context []string `yaml:"context,omitempty" json:"context,omitempty"`

	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// IsEnabled returns true unless the definition was explicitly switched off.
func (d *Definition) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// Shared fragments. Capture group 1, when present, is the redacted part of a match.
const (
	kanji    = `一-龠`
	kana     = `ぁ-んァ-ヶ`
	orgChars = `[` + kanji + kana + `A-Za-z0-9]{2,}`

	// RE2's \s and \S are ASCII-only; these also cover U+3000 and other
	// Unicode space separators.
	space    = `[\s\p{Zs}]`
	nonSpace = `[^\s\p{Zs}]`

	orgSuffixes = `(?:製作所|株式会社|有限会社|合同会社|一般社団法人|一般財団法人|特定非営利活動法人|商店|店舗|支店|ホテル|旅館|銀行|証券|会社|企業|法人)`

	orgRegex = `(` + orgChars + orgSuffixes + `)(?:\s|$)`
)

// DefaultDefinitions returns the built-in catalog. Numeric-only rules
// (security code, PIN, bank account, driver's license) carry low priors and
// only survive the score threshold when a context word is nearby.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Name:            "jp_phone",
			SupportedEntity: detector.EntityPhoneNumber,
			Description:     "Japanese landline and mobile numbers with hyphen separators",
			Patterns: []Pattern{
				{Name: "jp_phone_pattern", Regex: `0\d{1,4}-\d{1,4}-\d{3,4}`, Score: 0.7},
			},
		},
		{
			Name:            "email",
			SupportedEntity: detector.EntityEmailAddress,
			Description:     "E-mail addresses",
			Patterns: []Pattern{
				{Name: "email_pattern", Regex: `[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`, Score: 0.9},
			},
		},
		{
			Name:            "credit_card",
			SupportedEntity: detector.EntityCreditCard,
			Description:     "Card numbers in four hyphenated groups or 14-16 plain digits",
			Patterns: []Pattern{
				{Name: "cc_pattern", Regex: `\b(?:\d{4}-){3}\d{4}\b|\b\d{14,16}\b`, Score: 0.6},
			},
		},
		{
			Name:            "romaji_name",
			SupportedEntity: detector.EntityPerson,
			Description:     "Names written in Latin script (Taro Yamada, TARO YAMADA)",
			Patterns: []Pattern{
				{Name: "romaji_name_pattern", Regex: `[A-Z][a-z]+(?:` + space + `+[A-Z][a-z]+)*|[A-Z]{2,}` + space + `+[A-Z]{2,}(?:` + space + `+[A-Z]{2,})*`, Score: 0.3},
			},
		},
		{
			Name:            "jp_name",
			SupportedEntity: detector.EntityPerson,
			Description:     "Runs of kanji and kana that may be personal names",
			Patterns: []Pattern{
				{Name: "jp_name_pattern", Regex: `[` + kanji + kana + `]{2,15}(?:[0-9]{1,5})?`, Score: 0.4},
				{Name: "jp_name_strong_pattern", Regex: `[：:\s\p{Zs}\-|]([` + kanji + `]{2,4}[ 　]?[` + kanji + kana + `]{2,4})(?:[:：\s\p{Zs}]|$)`, Score: 0.85},
			},
		},
		{
			Name:            "jp_org",
			SupportedEntity: detector.EntityOrg,
			Description:     "Company and institution names ending in a corporate suffix",
			Patterns: []Pattern{
				{Name: "org_pattern", Regex: orgRegex, Score: 0.6},
			},
		},
		{
			Name:            "jp_organization",
			SupportedEntity: detector.EntityOrganization,
			Description:     "Company and institution names ending in a corporate suffix",
			Patterns: []Pattern{
				{Name: "org_pattern", Regex: orgRegex, Score: 0.6},
			},
		},
		{
			Name:            "my_number",
			SupportedEntity: detector.EntityMyNumber,
			Description:     "12-digit individual numbers (My Number)",
			Patterns: []Pattern{
				{Name: "mynumber_pattern", Regex: `\d{12}`, Score: 0.4},
			},
		},
		{
			Name:            "drivers_license",
			SupportedEntity: detector.EntityDriversLicense,
			Description:     "12-digit driver's license numbers, optionally written as 第...号",
			Patterns: []Pattern{
				{Name: "license_pattern", Regex: `(?:第?\s*)?(\d{12})(?:\s*号)?`, Score: 0.35},
			},
		},
		{
			Name:            "passport",
			SupportedEntity: detector.EntityPassport,
			Description:     "Passport numbers: one or two capitals followed by 7-8 digits",
			Patterns: []Pattern{
				{Name: "passport_pattern", Regex: `[A-Z]{1,2}\d{7,8}`, Score: 0.5},
			},
		},
		{
			Name:            "bank_account",
			SupportedEntity: detector.EntityBankAccount,
			Description:     "7-digit bank account numbers",
			Patterns: []Pattern{
				{Name: "bank_account_pattern", Regex: `\d{7}`, Score: 0.3},
			},
		},
		{
			Name:            "tax_number",
			SupportedEntity: detector.EntityTaxNumber,
			Description:     "Qualified invoice issuer numbers (T + 13 digits)",
			Patterns: []Pattern{
				{Name: "tax_number_pattern", Regex: `T\d{13}`, Score: 0.8},
			},
		},
		{
			Name:            "password",
			SupportedEntity: detector.EntityPassword,
			Description:     "Values following a password label",
			Patterns: []Pattern{
				{Name: "password_en_pattern", Regex: `[Pp]assword` + space + `*[:：=]` + space + `*(` + nonSpace + `{8,})`, Score: 0.95},
				{Name: "password_ja_pattern", Regex: `パスワード` + space + `*[:：=]` + space + `*(` + nonSpace + `{8,})`, Score: 0.95},
				{Name: "pw_pattern", Regex: `[Pp][Ww]` + space + `*[:：=]` + space + `*(` + nonSpace + `{8,})`, Score: 0.95},
			},
		},
		{
			Name:            "secret_key",
			SupportedEntity: detector.EntitySecretKey,
			Description:     "API keys and tokens, by well-known prefix or by length",
			Patterns: []Pattern{
				{Name: "secret_key_prefix_pattern", Regex: `(?:sk|pk|tok|secret|key|akid|amzn)[-_a-zA-Z0-9]{12,}`, Score: 0.95},
				{Name: "long_secret_pattern", Regex: `[a-zA-Z0-9\-_/+=.]{32,}`, Score: 0.5},
			},
		},
		{
			Name:            "certificate",
			SupportedEntity: detector.EntityCertificate,
			Description:     "PEM blocks (certificates and private keys)",
			Patterns: []Pattern{
				{Name: "cert_pattern", Regex: `-----BEGIN [\s\S]+?-----END [\s\S]+?-----`, Score: 0.95},
			},
		},
		{
			Name:            "security_code",
			SupportedEntity: detector.EntitySecurityCode,
			Description:     "3-4 digit card security codes",
			Patterns: []Pattern{
				{Name: "security_code_pattern", Regex: `\b\d{3,4}\b`, Score: 0.2},
			},
		},
		{
			Name:            "pin",
			SupportedEntity: detector.EntityPIN,
			Description:     "4-digit PIN codes",
			Patterns: []Pattern{
				{Name: "pin_pattern", Regex: `\b\d{4}\b`, Score: 0.2},
			},
		},
	}
}

// DefaultContextWords returns the context-word table keyed by entity type.
// Matching is case-insensitive, so Latin words are listed once.
func DefaultContextWords() map[string][]string {
	return map[string][]string{
		detector.EntityPhoneNumber:  {"電話", "電話番号", "携帯", "連絡先", "tel", "fax", "内線"},
		detector.EntityEmailAddress: {"メール", "アドレス", "e-mail", "email", "mail"},
		detector.EntityCreditCard:   {"カード", "クレジット", "カード番号", "visa", "mastercard", "jcb", "有効期限"},
		detector.EntityPerson: {
			"氏名", "名前", "担当", "様", "さん", "殿", "氏", "代表", "責任者",
			"申請者", "作成者", "承認者", "社員", "お客様",
		},
		detector.EntityOrg:            {"会社", "社名", "企業", "法人", "取引先", "所属", "勤務先"},
		detector.EntityOrganization:   {"会社", "社名", "企業", "法人", "取引先", "所属", "勤務先"},
		detector.EntityLocation:       {"住所", "所在地", "本社", "自宅"},
		detector.EntityMyNumber:       {"マイナンバー", "個人番号", "通知カード"},
		detector.EntityDriversLicense: {"運転免許", "免許証", "免許番号"},
		detector.EntityPassport:       {"パスポート", "旅券", "passport"},
		detector.EntityBankAccount:    {"口座", "口座番号", "普通", "当座", "振込"},
		detector.EntityTaxNumber:      {"登録番号", "適格請求書", "インボイス", "法人番号"},
		detector.EntityPassword:       {"パスワード", "password", "pw", "暗証"},
		detector.EntitySecretKey:      {"secret", "token", "apiキー", "api key", "アクセスキー", "シークレット", "秘密鍵"},
		detector.EntityCertificate:    {"証明書", "certificate", "private key"},
		detector.EntitySecurityCode:   {"セキュリティコード", "cvv", "cvc", "確認コード"},
		detector.EntityPIN:            {"暗証番号", "pin"},
	}
}

// MergeDefinitions layers definitions by Name: a later layer replaces an
// earlier definition of the same name, new names are appended in order.
func MergeDefinitions(layers ...[]Definition) []Definition {
	index := make(map[string]int)
	var merged []Definition

	for _, layer := range layers {
		for _, def := range layer {
			if idx, exists := index[def.Name]; exists {
				merged[idx] = def
				continue
			}
			index[def.Name] = len(merged)
			merged = append(merged, def)
		}
	}
	return merged
}

// MergeContextWords overlays per-entity word lists on a base table.
// An entry in the overlay replaces the base list for that entity type.
func MergeContextWords(base, overlay map[string][]string) map[string][]string {
	out := make(map[string][]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range overlay {
		out[k] = append([]string(nil), v...)
	}
	return out
}

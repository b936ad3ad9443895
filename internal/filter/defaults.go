// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package filter

// DefaultCommonWords are everyday document words that the name patterns pick
// up as PERSON. Compared against the trimmed span text exactly.
func DefaultCommonWords() []string {
	return []string{
		"氏名", "名前", "住所", "電話", "電話番号", "連絡先", "担当", "担当者",
		"会社", "会社名", "部署", "役職", "所属", "日付", "時間", "金額", "合計",
		"備考", "件名", "本文", "内容", "詳細", "情報", "確認", "対応", "予定",
		"会議", "議事録", "資料", "報告", "申請", "承認", "完了", "未定",
		"お客様", "パスワード", "メール", "アドレス", "ユーザー", "ログイン",
		"概要", "目的", "結果", "次回", "以上", "本日", "明日", "今後",
		"弊社", "御社", "当社", "株式会社", "有限会社", "よろしく", "お願い",
		"ありがとう", "こちら", "そちら", "について", "として", "ください",
	}
}

// DefaultBusinessSuffixPattern matches words ending in a business noun
// (…情報, …記録, …設定). It is anchored at the end of the span text.
const DefaultBusinessSuffixPattern = `(?:情報|記録|設定|一覧|管理|番号|履歴|資料|報告|申請|確認|対応|会議|書類|明細|内容|予定|結果|方法|手順|商店|会社|銀行|支店|部署)`

// DefaultAmountContextWords mark a nearby figure as money.
func DefaultAmountContextWords() []string {
	return []string{"金額", "¥", "合計"}
}

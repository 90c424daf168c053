// Package frontmatter — кодек метаданных контент-файла: YAML-блок
// в начале файла плюс markdown-тело.
package frontmatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v2"
)

// Parse разбирает YAML-блок и тело. Файл без блока метаданных — не
// ошибка: возвращается пустая карта и весь текст как тело. Неизвестные
// ключи проходят без изменений.
func Parse(raw string) (map[string]interface{}, string, error) {
	fm := map[string]interface{}{}
	rest, err := frontmatter.Parse(strings.NewReader(raw), &fm)
	if err != nil {
		return nil, "", fmt.Errorf("разбор front matter: %w", err)
	}
	body := string(rest)
	// Serialize отделяет блок от тела ровно одной пустой строкой —
	// при разборе её же и снимаем, чтобы цикл parse/serialize был точным.
	if len(fm) > 0 || strings.HasPrefix(raw, "---") {
		body = strings.TrimPrefix(body, "\n")
	}
	return fm, body, nil
}

// Serialize собирает файл обратно. Ключи с nil-значением выбрасываются:
// файл никогда не содержит явных «пустых» ключей.
func Serialize(fm map[string]interface{}, body string) (string, error) {
	clean := map[string]interface{}{}
	for k, v := range fm {
		if v == nil {
			continue
		}
		clean[k] = v
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	if len(clean) > 0 {
		out, err := yaml.Marshal(clean)
		if err != nil {
			return "", fmt.Errorf("сериализация front matter: %w", err)
		}
		sb.Write(out)
	}
	sb.WriteString("---\n\n")
	sb.WriteString(body)
	return sb.String(), nil
}

// Str возвращает строковое значение ключа ("" если нет или не строка).
func Str(fm map[string]interface{}, key string) string {
	if v, ok := fm[key].(string); ok {
		return v
	}
	return ""
}

// Bool возвращает булево значение ключа (false если нет).
func Bool(fm map[string]interface{}, key string) bool {
	if v, ok := fm[key].(bool); ok {
		return v
	}
	return false
}

// Strings возвращает значение-массив строк. YAML отдаёт []interface{},
// элементы приводятся к строкам; одиночная строка трактуется как
// массив из одного элемента.
func Strings(fm map[string]interface{}, key string) []string {
	switch v := fm[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// Time разбирает значение ключа как время (ISO-строка или time.Time).
func Time(fm map[string]interface{}, key string) *time.Time {
	switch v := fm[key].(type) {
	case time.Time:
		return &v
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return &t
			}
		}
	}
	return nil
}

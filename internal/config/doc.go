// Package config содержит неизменяемые значения конфигурации сервера и
// устройства. Сервер собирает конфигурацию слоями: значения по умолчанию,
// YAML файл, переменные окружения, флаги командной строки.
package config

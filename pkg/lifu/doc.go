// Package lifu реализует строковый протокол обмена с блоками TX и HV
// по USB CDC (виртуальный COM-порт).
//
// Каждая команда — одна строка, завершённая '\n'. Ответ на команду:
//
//	OK[ <данные>]
//	ERR <код> <сообщение>
//
// Любые другие строки, пришедшие от устройства (статус, JSON триггера),
// считаются асинхронными данными и передаются обработчику OnData.
// Одновременно выполняется не более одной команды на устройство.
package lifu
